package reservation

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/azero-id/azns-toolkit/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const aliceSS58 = "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"

var alice = domain.MustParseAccountID(aliceSS58)

type minLength int

func (m minLength) IsNameAllowed(name string) error {
	if len(name) < int(m) {
		return errors.New("too short")
	}
	return nil
}

func TestParse(t *testing.T) {
	input := strings.Join([]string{
		"name,address",
		"Alice.azero," + aliceSS58,
		"# team names",
		"wallet",
		"  bridge.AZERO  ,",
		"treasury,0xd43593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7a56da27d",
	}, "\n")

	got, err := NewParser("azero", nil).Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.Equal(t, "alice", got[0].Name)
	require.NotNil(t, got[0].Address)
	assert.Equal(t, alice, *got[0].Address)

	assert.Equal(t, domain.Reservation{Name: "wallet"}, got[1])
	assert.Equal(t, domain.Reservation{Name: "bridge"}, got[2])

	require.NotNil(t, got[3].Address)
	assert.Equal(t, alice, *got[3].Address)
}

func TestParse_WithoutHeader(t *testing.T) {
	got, err := NewParser("azero", nil).Parse(strings.NewReader("first\nsecond\n"))
	require.NoError(t, err)
	assert.Equal(t, []domain.Reservation{{Name: "first"}, {Name: "second"}}, got)
}

func TestParse_CollectsAllErrors(t *testing.T) {
	input := strings.Join([]string{
		"name,address",
		"alice",
		"ab",
		"bob,not-an-address",
		"Alice.azero",
		"carol,a,b",
		".azero",
	}, "\n")

	_, err := NewParser("azero", minLength(3)).Parse(strings.NewReader(input))
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrNameNotAllowed)
	assert.ErrorIs(t, err, domain.ErrInvalidAddress)
	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.ErrorIs(t, err, ErrTooManyColumns)
	assert.ErrorIs(t, err, ErrEmptyName)

	msg := err.Error()
	assert.Contains(t, msg, "row 3:")
	assert.Contains(t, msg, "row 4:")
	assert.Contains(t, msg, `row 5: duplicate name: "alice" first seen on row 2`)
	assert.Contains(t, msg, "row 6:")
	assert.Contains(t, msg, "row 7:")
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reservations.csv")
	require.NoError(t, os.WriteFile(path, []byte("name\nalice\n"), 0644))

	got, err := NewParser("azero", nil).ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, []domain.Reservation{{Name: "alice"}}, got)

	_, err = NewParser("azero", nil).ParseFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
