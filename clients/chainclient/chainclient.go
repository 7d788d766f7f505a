// Copyright 2020 IOTA Stiftung
// SPDX-License-Identifier: Apache-2.0

package chainclient

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/profilesharing/packages/cryptolib"
	"github.com/iotaledger/profilesharing/packages/l1connection"
	"github.com/iotaledger/profilesharing/packages/util"
)

// Client allows to interact with the ledger on behalf of one identity, for
// example to send transactions to a contract or to query its views
type Client struct {
	Layer1Client l1connection.Client
	ChainID      *big.Int
	KeyPair      cryptolib.VariantKeyPair
}

// New creates a new chainclient.Client
func New(
	layer1Client l1connection.Client,
	chainID *big.Int,
	keyPair cryptolib.VariantKeyPair,
) *Client {
	return &Client{
		Layer1Client: layer1Client,
		ChainID:      chainID,
		KeyPair:      keyPair,
	}
}

// NewFromLedger creates a client for the chain id reported by the ledger.
func NewFromLedger(ctx context.Context, layer1Client l1connection.Client, keyPair cryptolib.VariantKeyPair) (*Client, error) {
	chainID, err := layer1Client.ChainID(ctx)
	if err != nil {
		return nil, ierrors.Wrap(err, "cannot get chain id")
	}
	return New(layer1Client, chainID, keyPair), nil
}

type PostRequestParams struct {
	// Value is the amount of base tokens sent along, in wei.
	Value    *big.Int
	gasLimit uint64
}

// GasLimit is zero unless set, which lets the transactor estimate it.
func (par *PostRequestParams) GasLimit() uint64 {
	return par.gasLimit
}

func defaultParams(params ...PostRequestParams) PostRequestParams {
	if len(params) > 0 {
		return params[0]
	}
	return PostRequestParams{}
}

func NewPostRequestParams() *PostRequestParams {
	return &PostRequestParams{}
}

func (par *PostRequestParams) WithGasLimit(gasLimit uint64) *PostRequestParams {
	par.gasLimit = gasLimit
	return par
}

// PostRequest signs and sends a transaction calling method of contract. It
// does not wait for the transaction to be confirmed.
func (c *Client) PostRequest(
	ctx context.Context,
	contract *bind.BoundContract,
	method string,
	args []any,
	params ...PostRequestParams,
) (*types.Transaction, error) {
	par := defaultParams(params...)
	opts, err := c.KeyPair.TransactOpts(c.ChainID)
	if err != nil {
		return nil, err
	}
	opts.Context = ctx
	opts.Value = par.Value
	opts.GasLimit = par.GasLimit()
	return contract.Transact(opts, method, args...)
}

// CallView calls method of contract from the client identity, against the
// latest state. Nothing is signed or sent.
func (c *Client) CallView(ctx context.Context, contract *bind.BoundContract, method string, args []any) ([]any, error) {
	var out []any
	err := contract.Call(&bind.CallOpts{Context: ctx, From: c.KeyPair.Address()}, &out, method, args...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// WaitUntilRequestProcessed blocks until tx is confirmed, or timeout expires.
func (c *Client) WaitUntilRequestProcessed(ctx context.Context, tx *types.Transaction, timeout time.Duration) (*types.Receipt, error) {
	ctx, cancel := util.WithTimeout(ctx, timeout)
	defer cancel()
	return l1connection.WaitUntilConfirmed(ctx, c.Layer1Client, tx)
}
