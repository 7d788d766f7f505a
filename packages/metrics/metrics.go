// Copyright 2020 IOTA Stiftung
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "profilesharing"

const (
	ResultDeployed = "deployed"
	ResultCached   = "cached"
	ResultFailed   = "failed"
	ResultOK       = "ok"

	KindSimulate = "simulate"
	KindSend     = "send"
)

type ClientMetrics struct {
	deployments *prometheus.CounterVec
	calls       *prometheus.CounterVec
}

// New creates the client metrics and registers them on reg. A nil reg
// leaves the metrics unregistered, which is what tests and one-shot CLI
// invocations want.
func New(reg prometheus.Registerer) *ClientMetrics {
	m := &ClientMetrics{
		deployments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deployments_total",
			Help:      "Contract deployment requests by outcome.",
		}, []string{"contract", "result"}),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_total",
			Help:      "Contract calls by method, kind and outcome.",
		}, []string{"method", "kind", "result"}),
	}
	if reg != nil {
		reg.MustRegister(m.deployments, m.calls)
	}
	return m
}

func (m *ClientMetrics) Deployment(contract, result string) {
	if m == nil {
		return
	}
	m.deployments.WithLabelValues(contract, result).Inc()
}

func (m *ClientMetrics) Call(method, kind string, err error) {
	if m == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultFailed
	}
	m.calls.WithLabelValues(method, kind, result).Inc()
}

func (m *ClientMetrics) Deployments() *prometheus.CounterVec {
	return m.deployments
}

func (m *ClientMetrics) Calls() *prometheus.CounterVec {
	return m.calls
}
