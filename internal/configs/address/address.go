package address

import (
	"errors"
	"strings"
)

// Supported scheme constants.
const (
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
)

// ErrUnsupportedScheme is returned when an address uses an unknown or unsupported scheme.
var ErrUnsupportedScheme = errors.New("unsupported address scheme")

// ErrEmptyAddress is returned when nothing follows the scheme.
var ErrEmptyAddress = errors.New("empty address")

// Address holds the scheme and actual network address.
type Address struct {
	Scheme  string
	Address string
}

// New parses the full input address and returns separated scheme/address.
// Default scheme is "http" if not specified.
func New(input string) Address {
	scheme := SchemeHTTP
	addr := strings.TrimSpace(input)

	if strings.HasPrefix(addr, SchemeHTTP+"://") {
		addr = strings.TrimPrefix(addr, SchemeHTTP+"://")
	} else if strings.HasPrefix(addr, SchemeHTTPS+"://") {
		scheme = SchemeHTTPS
		addr = strings.TrimPrefix(addr, SchemeHTTPS+"://")
	}

	return Address{
		Scheme:  scheme,
		Address: addr,
	}
}

// Parse is New that rejects foreign schemes and empty addresses.
func Parse(input string) (Address, error) {
	addr := New(input)
	if strings.Contains(addr.Address, "://") {
		return Address{}, ErrUnsupportedScheme
	}
	if addr.Address == "" {
		return Address{}, ErrEmptyAddress
	}
	return addr, nil
}

// String returns the address as an absolute URL.
func (a Address) String() string {
	return a.Scheme + "://" + a.Address
}
