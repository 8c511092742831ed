package custodyconst

const (
	// InactivityPeriod is the time in milliseconds after the last owner
	// activity when the heir is allowed to take control over the custody.
	InactivityPeriod = 30 * 24 * 60 * 60 * 1000

	// ErrNotOwner is thrown when the method must be witnessed by the
	// current owner but was not.
	ErrNotOwner = "NotOwner"
	// ErrInsufficientBalance is thrown when withdrawal amount exceeds the
	// custody balance.
	ErrInsufficientBalance = "InsufficientBalance"
	// ErrNotHeir is thrown when control transfer is not witnessed by the
	// current heir.
	ErrNotHeir = "NotHeir"
	// ErrOwnerNotExpired is thrown when control transfer is requested before
	// InactivityPeriod passes since the last owner activity.
	ErrOwnerNotExpired = "OwnerNotExpired"

	// ErrInvalidHeir is thrown when heir is not a valid script hash.
	ErrInvalidHeir = "invalid heir"
	// ErrNegativeAmount is thrown on withdrawal of a negative amount.
	ErrNegativeAmount = "negative amount"
	// ErrTransferFailed is thrown when GAS contract refuses to pay out.
	ErrTransferFailed = "transfer failed"
	// ErrOnlyGAS is thrown when anything but native GAS is sent to the custody.
	ErrOnlyGAS = "only GAS can be accepted"

	// DepositEvent is a name of the notification produced on incoming payment.
	DepositEvent = "Deposit"
	// WithdrawEvent is a name of the notification produced on owner withdrawal.
	WithdrawEvent = "Withdraw"
	// ControlTransferredEvent is a name of the notification produced when
	// heir takes control over the custody.
	ControlTransferredEvent = "ControlTransferred"
)
