package domain

import (
	"fmt"
	"strings"
)

type (
	// Reservation pre-assigns a name to an account. A nil Address reserves the name for nobody.
	Reservation struct {
		Name    string     `json:"name" yaml:"name"`
		Address *AccountID `json:"address,omitempty" yaml:"address,omitempty"`
	}

	// WhitelistEntry is an account allowed to register during the whitelist phase.
	WhitelistEntry struct {
		Account AccountID
		Line    int
	}

	ContractName string

	// Deployment maps each deployed contract to its address.
	Deployment struct {
		Version   uint32
		Deployer  AccountID
		Contracts map[ContractName]AccountID
	}

	Record struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
)

const (
	ContractNameNameChecker    ContractName = "azns_name_checker"
	ContractNameFeeCalculator  ContractName = "azns_fee_calculator"
	ContractNameMerkleVerifier ContractName = "azns_merkle_verifier"
	ContractNameRegistry       ContractName = "azns_registry"
	ContractNameRouter         ContractName = "azns_router"
)

// SanitizeName normalises a user supplied domain name and strips a trailing ".<tld>".
func SanitizeName(name, tld string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if tld != "" {
		name = strings.TrimSuffix(name, "."+strings.ToLower(tld))
	}
	return name
}

func (r Reservation) String() string {
	if r.Address == nil {
		return fmt.Sprintf("%s -> <none>", r.Name)
	}
	return fmt.Sprintf("%s -> %s", r.Name, r.Address)
}
