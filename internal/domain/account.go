package domain

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/blake2b"
)

// AccountIDLength is the size of a chain account identifier in bytes.
const AccountIDLength = 32

// GenericSubstratePrefix is the SS58 network prefix used when nothing else is configured.
const GenericSubstratePrefix uint16 = 42

// MaxSS58Prefix is the largest network prefix the two-byte SS58 form can carry.
const MaxSS58Prefix uint16 = 16383

const checksumLength = 2

var ss58Context = []byte("SS58PRE")

var (
	ErrInvalidAddress  = errors.New("invalid address")
	ErrInvalidChecksum = errors.New("invalid ss58 checksum")
)

// AccountID identifies an account or a contract on chain.
type AccountID [AccountIDLength]byte

// ZeroAccount is the default address. Lookups of unknown names resolve to it.
var ZeroAccount AccountID

// ParseAccountID accepts either an SS58 encoded address or a 0x-prefixed hex public key.
func ParseAccountID(s string) (AccountID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return AccountID{}, fmt.Errorf("%w: empty", ErrInvalidAddress)
	}

	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		raw, err := hexutil.Decode("0x" + s[2:])
		if err != nil {
			return AccountID{}, fmt.Errorf("%w: %s: %w", ErrInvalidAddress, s, err)
		}
		return accountFromBytes(raw)
	}

	account, _, err := DecodeSS58(s)
	return account, err
}

// MustParseAccountID is ParseAccountID for constants and tests.
func MustParseAccountID(s string) AccountID {
	account, err := ParseAccountID(s)
	if err != nil {
		panic(err)
	}
	return account
}

func accountFromBytes(raw []byte) (AccountID, error) {
	if len(raw) != AccountIDLength {
		return AccountID{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidAddress, AccountIDLength, len(raw))
	}

	var account AccountID
	copy(account[:], raw)
	return account, nil
}

// DecodeSS58 decodes an SS58 address and returns the account together with its network prefix.
func DecodeSS58(address string) (AccountID, uint16, error) {
	data := base58.Decode(address)
	if len(data) == 0 {
		return AccountID{}, 0, fmt.Errorf("%w: %q is not base58", ErrInvalidAddress, address)
	}

	if data[0]&0x80 != 0 {
		return AccountID{}, 0, fmt.Errorf("%w: %q uses a reserved prefix byte %#x", ErrInvalidAddress, address, data[0])
	}

	prefixLen := 1
	prefix := uint16(data[0])
	if data[0]&0x40 != 0 {
		if len(data) < 2 {
			return AccountID{}, 0, fmt.Errorf("%w: %q is too short", ErrInvalidAddress, address)
		}
		lower := (data[0] << 2) | (data[1] >> 6)
		upper := data[1] & 0x3f
		prefix = uint16(lower) | uint16(upper)<<8
		prefixLen = 2
	}

	if len(data) != prefixLen+AccountIDLength+checksumLength {
		return AccountID{}, 0, fmt.Errorf("%w: %q has unexpected length %d", ErrInvalidAddress, address, len(data))
	}

	payload := data[:prefixLen+AccountIDLength]
	if !bytes.Equal(ss58Checksum(payload), data[prefixLen+AccountIDLength:]) {
		return AccountID{}, 0, fmt.Errorf("%w: %s", ErrInvalidChecksum, address)
	}

	account, err := accountFromBytes(data[prefixLen : prefixLen+AccountIDLength])
	if err != nil {
		return AccountID{}, 0, err
	}
	return account, prefix, nil
}

// SS58 encodes the account for the given network prefix.
func (a AccountID) SS58(prefix uint16) (string, error) {
	if prefix > MaxSS58Prefix {
		return "", fmt.Errorf("%w: ss58 prefix %d out of range", ErrInvalidAddress, prefix)
	}

	var payload []byte
	if prefix < 64 {
		payload = append(payload, byte(prefix))
	} else {
		first := byte((prefix&0b0000_0000_1111_1100)>>2) | 0b0100_0000
		second := byte(prefix>>8) | byte((prefix&0b0000_0000_0000_0011)<<6)
		payload = append(payload, first, second)
	}
	payload = append(payload, a[:]...)
	payload = append(payload, ss58Checksum(payload)...)

	return base58.Encode(payload), nil
}

func ss58Checksum(payload []byte) []byte {
	hash := blake2b.Sum512(append(append([]byte{}, ss58Context...), payload...))
	return hash[:checksumLength]
}

// String returns the generic substrate SS58 form.
func (a AccountID) String() string {
	s, _ := a.SS58(GenericSubstratePrefix)
	return s
}

// Hex returns the 0x-prefixed public key.
func (a AccountID) Hex() string {
	return hexutil.Encode(a[:])
}

func (a AccountID) IsZero() bool {
	return a == ZeroAccount
}

func (a AccountID) Bytes() []byte {
	return a[:]
}

// MarshalText encodes the account as hex so snapshots do not depend on a network prefix.
func (a AccountID) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

func (a *AccountID) UnmarshalText(text []byte) error {
	account, err := ParseAccountID(string(text))
	if err != nil {
		return err
	}
	*a = account
	return nil
}
