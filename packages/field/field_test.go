package field

import (
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestEncodeKnownValues(t *testing.T) {
	v, err := Encode("Alice")
	require.NoError(t, err)
	require.Equal(t, "0x416c696365", v.String())

	v, err = Encode("NY dev")
	require.NoError(t, err)
	require.Equal(t, "0x4e5920646576", v.String())
}

func TestEncodeEmptyString(t *testing.T) {
	empty, err := Encode("")
	require.NoError(t, err)
	require.True(t, empty.IsZero())

	for _, s := range []string{"a", " ", "Alice", "NY dev", "0", "\x01", "ü"} {
		v, err := Encode(s)
		require.NoError(t, err)
		require.False(t, empty.Equal(v), "encoding of %q collides with the empty string", s)
	}
}

func TestEncodeNonASCII(t *testing.T) {
	v, err := Encode("ü€")
	require.NoError(t, err)
	require.Equal(t, "0xc3bce282ac", v.String())
	require.Equal(t, "ü€", DecodeString(v))
}

func TestEncodeOverflow(t *testing.T) {
	_, err := Encode(strings.Repeat("A", 32))
	require.ErrorIs(t, err, ErrEncodingOverflow)

	_, err = Encode(strings.Repeat("x", 33))
	require.ErrorIs(t, err, ErrEncodingOverflow)

	// 0x20... stays below the modulus, which starts with 0x30.
	v, err := Encode(strings.Repeat(" ", 32))
	require.NoError(t, err)
	require.Equal(t, strings.Repeat(" ", 32), DecodeString(v))
}

func TestFromBigRange(t *testing.T) {
	_, err := FromBig(Modulus())
	require.ErrorIs(t, err, ErrEncodingOverflow)

	_, err = FromBig(big.NewInt(-1))
	require.ErrorIs(t, err, ErrEncodingOverflow)

	maxValue := new(big.Int).Sub(Modulus(), big.NewInt(1))
	v, err := FromBig(maxValue)
	require.NoError(t, err)
	require.Equal(t, 0, v.Big().Cmp(maxValue))
}

func TestFromHex(t *testing.T) {
	v, err := FromHex("0x19")
	require.NoError(t, err)
	require.True(t, v.Equal(FromUint64(25)))

	_, err = FromHex("0x")
	require.Error(t, err)

	_, err = FromHex("zz")
	require.Error(t, err)
}

func TestRandomBelowModulus(t *testing.T) {
	for i := 0; i < 20; i++ {
		v, err := Random()
		require.NoError(t, err)
		require.Equal(t, -1, v.Big().Cmp(Modulus()))
	}
}

func TestTextMarshaling(t *testing.T) {
	v := MustEncode("bio")
	text, err := v.MarshalText()
	require.NoError(t, err)

	var back Value
	require.NoError(t, back.UnmarshalText(text))
	require.True(t, v.Equal(back))
}

func TestEncodeDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.StringN(0, 31, 31).Draw(t, "s")
		a, err := Encode(s)
		if err != nil {
			t.Fatalf("short string %q failed to encode: %v", s, err)
		}
		b, err := Encode(s)
		if err != nil {
			t.Fatalf("second encoding of %q failed: %v", s, err)
		}
		if !a.Equal(b) {
			t.Fatalf("encoding of %q is not deterministic: %s != %s", s, a, b)
		}
		if a.Big().Cmp(Modulus()) >= 0 {
			t.Fatalf("encoding of %q is not below the modulus", s)
		}
	})
}

func TestDecodeStringRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := rapid.SliceOfN(rapid.ByteRange(1, 0xff), 1, 31).Draw(t, "b")
		s := string(b)
		v, err := Encode(s)
		if err != nil {
			t.Fatalf("encode %x: %v", b, err)
		}
		if got := DecodeString(v); got != s {
			t.Fatalf("round trip of %x yielded %x", b, []byte(got))
		}
	})
}
