/*
Package custody implements Custody contract which keeps GAS on behalf of a
single owner and passes control over it to the heir if the owner stays
inactive for too long.

Anyone can deposit GAS to the contract with a regular NEP-17 transfer, deposit
data is ignored. Only the owner can withdraw. Every successful withdrawal,
including the one of zero amount, is treated as owner activity. When
custodyconst.InactivityPeriod passes since the last owner activity, the heir
can take control: the heir becomes the owner, the new heir is set and the
inactivity period starts over. The balance itself is never moved on control
transfer, it's the GAS held by the contract account.

Owner is the sender of the deployment transaction, heir is passed as the
deployment data.

# Contract notifications

Deposit notification. This notification is produced when GAS is transferred
to the contract.

	Deposit:
	  - name: from
	    type: Hash160
	  - name: amount
	    type: Integer

Withdraw notification. This notification is produced when the owner withdraws
GAS from the contract.

	Withdraw:
	  - name: owner
	    type: Hash160
	  - name: amount
	    type: Integer

ControlTransferred notification. This notification is produced when the heir
takes control over the contract.

	ControlTransferred:
	  - name: previousOwner
	    type: Hash160
	  - name: newOwner
	    type: Hash160
	  - name: newHeir
	    type: Hash160
*/
package custody

/*
Contract storage model.

# Summary
Key-value storage format:
  - 'a' -> std.Serialize(Account)
    owner, heir and the timestamp of the last owner activity (here Account is
    a structure defined in current package)

# Balance
Balance is not stored, it's the GAS balance of the contract account.
*/
