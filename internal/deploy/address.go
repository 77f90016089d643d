package deploy

import (
	"encoding/binary"

	"github.com/azero-id/azns-toolkit/internal/domain"
	"github.com/ethereum/go-ethereum/crypto"
)

// ContractAddress derives the address of a contract instance as
// keccak256(deployer || name || little-endian version).
func ContractAddress(deployer domain.AccountID, name domain.ContractName, version uint32) domain.AccountID {
	salt := binary.LittleEndian.AppendUint32(nil, version)
	var address domain.AccountID
	copy(address[:], crypto.Keccak256(deployer[:], []byte(name), salt))
	return address
}
