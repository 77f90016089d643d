package registry

import "errors"

var (
	ErrNameAlreadyExists              = errors.New("name already exists")
	ErrNameNotAllowed                 = errors.New("name not allowed")
	ErrCallerIsNotOwner               = errors.New("caller is not owner")
	ErrCallerIsNotController          = errors.New("caller is not controller")
	ErrFeeNotPaid                     = errors.New("fee not paid")
	ErrRecordNotFound                 = errors.New("record not found")
	ErrNoRecordsForAddress            = errors.New("no records for address")
	ErrInsufficientFunds              = errors.New("insufficient funds")
	ErrNoResolvedAddress              = errors.New("no resolved address")
	ErrRecursiveParent                = errors.New("recursive parents not allowed")
	ErrParentNotRegistered            = errors.New("parent domain not registered")
	ErrAlreadyClaimed                 = errors.New("only one domain can be claimed during the whitelist phase")
	ErrInvalidMerkleProof             = errors.New("invalid merkle proof")
	ErrOnlyDuringWhitelistPhase       = errors.New("only allowed during the whitelist phase")
	ErrRestrictedDuringWhitelistPhase = errors.New("not allowed during the whitelist phase")
	ErrCannotBuyReservedDomain        = errors.New("domain is reserved")
	ErrNotReservedDomain              = errors.New("domain is not reserved")
	ErrNotAuthorised                  = errors.New("not authorised to claim domain")
)
