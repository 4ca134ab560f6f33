// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

// Code identifies a failure of a stake manager operation.
type Code uint32

const (
	ProgramIdNotMatch Code = iota + 6000
	RemainingAccountsNotMatch
	AdminNotMatch
	BalancerNotMatch
	InitializeDataMatch
	FeeRecipientNotMatch
	DelegationEmpty
	StakeAmountTooLow
	StakeAccountNotActive
	StakeAccountActive
	StakeAccountWithLockup
	UnstakeRecipientNotMatch
	ValidatorNotExist
	ValidatorAlreadyExist
	ValidatorNotMatch
	StakeAccountAlreadyExist
	SplitStakeAccountAlreadyExist
	StakeAccountNotExist
	RentNotEnough
	BalanceNotEnough
	CalculationFail
	AuthorityNotMatch
	EraIsLatest
	EraIsProcessing
	EraIsProcessed
	EraNoNeedBond
	EraNoNeedUnBond
	EraNoNeedUpdateActive
	EraNoNeedUpdateRate
	AmountUnmatch
	InvalidUnstakeAccount
	UnstakeAccountNotClaimable
	UnstakeAccountAmountZero
	PoolBalanceNotEnough
	UnstakeAmountIsZero
	ValidatorsNotEqual
	RateChangeOverLimit
	MintAccountNotMatch
	MintToOwnerNotMatch
	StakeAccountsLenOverLimit
)

var codeNames = map[Code]string{
	ProgramIdNotMatch:             "ProgramIdNotMatch",
	RemainingAccountsNotMatch:     "RemainingAccountsNotMatch",
	AdminNotMatch:                 "AdminNotMatch",
	BalancerNotMatch:              "BalancerNotMatch",
	InitializeDataMatch:           "InitializeDataMatch",
	FeeRecipientNotMatch:          "FeeRecipientNotMatch",
	DelegationEmpty:               "DelegationEmpty",
	StakeAmountTooLow:             "StakeAmountTooLow",
	StakeAccountNotActive:         "StakeAccountNotActive",
	StakeAccountActive:            "StakeAccountActive",
	StakeAccountWithLockup:        "StakeAccountWithLockup",
	UnstakeRecipientNotMatch:      "UnstakeRecipientNotMatch",
	ValidatorNotExist:             "ValidatorNotExist",
	ValidatorAlreadyExist:         "ValidatorAlreadyExist",
	ValidatorNotMatch:             "ValidatorNotMatch",
	StakeAccountAlreadyExist:      "StakeAccountAlreadyExist",
	SplitStakeAccountAlreadyExist: "SplitStakeAccountAlreadyExist",
	StakeAccountNotExist:          "StakeAccountNotExist",
	RentNotEnough:                 "RentNotEnough",
	BalanceNotEnough:              "BalanceNotEnough",
	CalculationFail:               "CalculationFail",
	AuthorityNotMatch:             "AuthorityNotMatch",
	EraIsLatest:                   "EraIsLatest",
	EraIsProcessing:               "EraIsProcessing",
	EraIsProcessed:                "EraIsProcessed",
	EraNoNeedBond:                 "EraNoNeedBond",
	EraNoNeedUnBond:               "EraNoNeedUnBond",
	EraNoNeedUpdateActive:         "EraNoNeedUpdateActive",
	EraNoNeedUpdateRate:           "EraNoNeedUpdateRate",
	AmountUnmatch:                 "AmountUnmatch",
	InvalidUnstakeAccount:         "InvalidUnstakeAccount",
	UnstakeAccountNotClaimable:    "UnstakeAccountNotClaimable",
	UnstakeAccountAmountZero:      "UnstakeAccountAmountZero",
	PoolBalanceNotEnough:          "PoolBalanceNotEnough",
	UnstakeAmountIsZero:           "UnstakeAmountIsZero",
	ValidatorsNotEqual:            "ValidatorsNotEqual",
	RateChangeOverLimit:           "RateChangeOverLimit",
	MintAccountNotMatch:           "MintAccountNotMatch",
	MintToOwnerNotMatch:           "MintToOwnerNotMatch",
	StakeAccountsLenOverLimit:     "StakeAccountsLenOverLimit",
}

var codeMessages = map[Code]string{
	ProgramIdNotMatch:             "Program id not match",
	RemainingAccountsNotMatch:     "Remaining accounts not match",
	AdminNotMatch:                 "Admin not match",
	BalancerNotMatch:              "Balancer not match",
	InitializeDataMatch:           "Initialize data not match",
	FeeRecipientNotMatch:          "Fee recipient not match",
	DelegationEmpty:               "Delegation empty",
	StakeAmountTooLow:             "Stake amount too low",
	StakeAccountNotActive:         "Stake account not active",
	StakeAccountActive:            "Stake account active",
	StakeAccountWithLockup:        "Stake account with lockup",
	UnstakeRecipientNotMatch:      "Unstake recipient not match",
	ValidatorNotExist:             "Validator not exist",
	ValidatorAlreadyExist:         "Validator already exist",
	ValidatorNotMatch:             "Validator not match",
	StakeAccountAlreadyExist:      "Stake account already exist",
	SplitStakeAccountAlreadyExist: "Split stake account already exist",
	StakeAccountNotExist:          "Stake account not exist",
	RentNotEnough:                 "Rent not enough",
	BalanceNotEnough:              "Balance not enough",
	CalculationFail:               "Calculation fail",
	AuthorityNotMatch:             "Authority not match",
	EraIsLatest:                   "Era is latest",
	EraIsProcessing:               "Era is processing",
	EraIsProcessed:                "Era is processed",
	EraNoNeedBond:                 "Era no need bond",
	EraNoNeedUnBond:               "Era no need unbond",
	EraNoNeedUpdateActive:         "Era no need update active",
	EraNoNeedUpdateRate:           "Era no need update rate",
	AmountUnmatch:                 "Amount unmatch",
	InvalidUnstakeAccount:         "Invalid unstake account",
	UnstakeAccountNotClaimable:    "Unstake account not claimable",
	UnstakeAccountAmountZero:      "Unstake account amount zero",
	PoolBalanceNotEnough:          "Pool balance not enough",
	UnstakeAmountIsZero:           "Unstake amount is zero",
	ValidatorsNotEqual:            "Validators not equal",
	RateChangeOverLimit:           "Rate change over limit",
	MintAccountNotMatch:           "Mint account not match",
	MintToOwnerNotMatch:           "Mint to owner not match",
	StakeAccountsLenOverLimit:     "Stake accounts len over limit",
}

// Category classifies failures by how the caller should react.
type Category uint8

const (
	// Precondition failures report a mismatch between the request and the ledger.
	Precondition Category = iota + 1
	// Ordering failures report an operation invoked out of the era sequence.
	Ordering
	// Numeric failures report arithmetic overflow or an unsafe rate move.
	Numeric
)

var codeCategories = map[Code]Category{
	CalculationFail:       Numeric,
	EraIsLatest:           Ordering,
	EraIsProcessing:       Ordering,
	EraIsProcessed:        Ordering,
	EraNoNeedBond:         Ordering,
	EraNoNeedUnBond:       Ordering,
	EraNoNeedUpdateActive: Ordering,
	EraNoNeedUpdateRate:   Ordering,
	RateChangeOverLimit:   Numeric,
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "Unknown"
}

// Message returns the human readable description of the code.
func (c Code) Message() string {
	return codeMessages[c]
}

// Category returns the category of the code.
func (c Code) Category() Category {
	if cat, ok := codeCategories[c]; ok {
		return cat
	}
	return Precondition
}

func (c Category) String() string {
	switch c {
	case Precondition:
		return "precondition"
	case Ordering:
		return "ordering"
	case Numeric:
		return "numeric"
	}
	return "unknown"
}

// sentinels for errors.Is
var (
	ErrProgramIdNotMatch             = New(ProgramIdNotMatch)
	ErrRemainingAccountsNotMatch     = New(RemainingAccountsNotMatch)
	ErrAdminNotMatch                 = New(AdminNotMatch)
	ErrBalancerNotMatch              = New(BalancerNotMatch)
	ErrInitializeDataMatch           = New(InitializeDataMatch)
	ErrFeeRecipientNotMatch          = New(FeeRecipientNotMatch)
	ErrDelegationEmpty               = New(DelegationEmpty)
	ErrStakeAmountTooLow             = New(StakeAmountTooLow)
	ErrStakeAccountNotActive         = New(StakeAccountNotActive)
	ErrStakeAccountActive            = New(StakeAccountActive)
	ErrStakeAccountWithLockup        = New(StakeAccountWithLockup)
	ErrUnstakeRecipientNotMatch      = New(UnstakeRecipientNotMatch)
	ErrValidatorNotExist             = New(ValidatorNotExist)
	ErrValidatorAlreadyExist         = New(ValidatorAlreadyExist)
	ErrValidatorNotMatch             = New(ValidatorNotMatch)
	ErrStakeAccountAlreadyExist      = New(StakeAccountAlreadyExist)
	ErrSplitStakeAccountAlreadyExist = New(SplitStakeAccountAlreadyExist)
	ErrStakeAccountNotExist          = New(StakeAccountNotExist)
	ErrRentNotEnough                 = New(RentNotEnough)
	ErrBalanceNotEnough              = New(BalanceNotEnough)
	ErrCalculationFail               = New(CalculationFail)
	ErrAuthorityNotMatch             = New(AuthorityNotMatch)
	ErrEraIsLatest                   = New(EraIsLatest)
	ErrEraIsProcessing               = New(EraIsProcessing)
	ErrEraIsProcessed                = New(EraIsProcessed)
	ErrEraNoNeedBond                 = New(EraNoNeedBond)
	ErrEraNoNeedUnBond               = New(EraNoNeedUnBond)
	ErrEraNoNeedUpdateActive         = New(EraNoNeedUpdateActive)
	ErrEraNoNeedUpdateRate           = New(EraNoNeedUpdateRate)
	ErrAmountUnmatch                 = New(AmountUnmatch)
	ErrInvalidUnstakeAccount         = New(InvalidUnstakeAccount)
	ErrUnstakeAccountNotClaimable    = New(UnstakeAccountNotClaimable)
	ErrUnstakeAccountAmountZero      = New(UnstakeAccountAmountZero)
	ErrPoolBalanceNotEnough          = New(PoolBalanceNotEnough)
	ErrUnstakeAmountIsZero           = New(UnstakeAmountIsZero)
	ErrValidatorsNotEqual            = New(ValidatorsNotEqual)
	ErrRateChangeOverLimit           = New(RateChangeOverLimit)
	ErrMintAccountNotMatch           = New(MintAccountNotMatch)
	ErrMintToOwnerNotMatch           = New(MintToOwnerNotMatch)
	ErrStakeAccountsLenOverLimit     = New(StakeAccountsLenOverLimit)
)
