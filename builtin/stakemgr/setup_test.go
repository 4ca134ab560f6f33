// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakemgr

import (
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rstake/node/builtin/bank"
	"github.com/rstake/node/builtin/minter"
	"github.com/rstake/node/builtin/stakemgr/ledger"
	"github.com/rstake/node/builtin/stakemgr/reverts"
	"github.com/rstake/node/builtin/stakeprog"
	"github.com/rstake/node/lvldb"
	"github.com/rstake/node/rstake"
	"github.com/rstake/node/state"
)

const (
	testReserve = 1000
	stakerFunds = 100_000_000
	payerFunds  = 100_000
)

var (
	managerAddr  = rstake.BytesToAddress([]byte("stake-manager"))
	admin        = rstake.BytesToAddress([]byte("admin"))
	feeRecipient = rstake.BytesToAddress([]byte("fee-recipient"))
	payer        = rstake.BytesToAddress([]byte("payer"))
	alice        = rstake.BytesToAddress([]byte("alice"))
	bob          = rstake.BytesToAddress([]byte("bob"))
	validatorA   = rstake.BytesToAddress([]byte("validator-a"))
	validatorB   = rstake.BytesToAddress([]byte("validator-b"))
)

func record(name string) rstake.Address {
	return rstake.DeriveAddress([]byte("record"), []byte(name))
}

type managerTest struct {
	t      *testing.T
	mgr    *Manager
	state  *state.State
	minter *minter.Minter
	bank   *bank.Bank
	prog   *stakeprog.Program
	epoch  uint64
}

// newUninitialized wires a manager over a fresh in-memory state with funded accounts
// but without a ledger.
func newUninitialized(t *testing.T) *managerTest {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.New(db)
	tok := minter.New(rstake.MinterAddress, st)
	bk := bank.New(st)
	prog := stakeprog.New(rstake.StakeProgramAddress, st)
	require.NoError(t, prog.SetReserve(testReserve))

	mgr := New(managerAddr, st, tok, bk, prog)
	require.NoError(t, tok.Initialize(admin, []rstake.Address{mgr.Pool()}))

	for addr, amount := range map[rstake.Address]uint64{
		alice: stakerFunds,
		bob:   stakerFunds,
		payer: payerFunds,
	} {
		require.NoError(t, bk.Mint(addr, amount))
	}

	return &managerTest{t: t, mgr: mgr, state: st, minter: tok, bank: bk, prog: prog}
}

func initData() *InitializeData {
	return &InitializeData{
		DerivativeMint: rstake.MinterAddress,
		FeeRecipient:   feeRecipient,
		Validator:      validatorA,
		Rate:           rstake.CalBase,
	}
}

func newTest(t *testing.T) *managerTest {
	mt := newUninitialized(t)
	require.NoError(t, mt.bank.Mint(mt.mgr.Pool(), rstake.PoolRentExempt))
	require.NoError(t, mt.mgr.Initialize(admin, initData()))
	mt.mgr.TakeEvents()
	return mt
}

func assertRevert(t *testing.T, err error, code reverts.Code) {
	t.Helper()
	got, ok := reverts.CodeOf(err)
	require.True(t, ok, "expected revert %v, got %v", code, err)
	assert.Equal(t, code, got, "unexpected revert: %v", err)
}

func (mt *managerTest) ledger() *ledger.Ledger {
	l, err := mt.mgr.Ledger()
	require.NoError(mt.t, err)
	require.NotNil(mt.t, l)
	return l
}

// snapshot returns the encoded ledger, to check an operation left it untouched.
func (mt *managerTest) snapshot() []byte {
	enc, err := rlp.EncodeToBytes(mt.ledger())
	require.NoError(mt.t, err)
	return enc
}

// advance moves the epoch forward.
func (mt *managerTest) advance(epochs uint64) *managerTest {
	mt.epoch += epochs
	return mt
}

func (mt *managerTest) stake(staker rstake.Address, amount uint64) *managerTest {
	require.NoError(mt.t, mt.mgr.Stake(staker, amount))
	return mt
}

func (mt *managerTest) unstake(owner rstake.Address, amount uint64) rstake.Address {
	id, err := mt.mgr.Unstake(owner, owner, amount, mt.epoch)
	require.NoError(mt.t, err)
	return id
}

func (mt *managerTest) eraNew() *managerTest {
	require.NoError(mt.t, mt.mgr.EraNew(mt.epoch))
	return mt
}

func (mt *managerTest) bond(validator, rec rstake.Address) *managerTest {
	require.NoError(mt.t, mt.mgr.EraBond(validator, rec, payer, mt.epoch))
	return mt
}

func (mt *managerTest) unbond(validator, from, split rstake.Address) *managerTest {
	require.NoError(mt.t, mt.mgr.EraUnbond(validator, from, split, payer, mt.epoch))
	return mt
}

func (mt *managerTest) updateActive(records ...rstake.Address) *managerTest {
	for _, rec := range records {
		require.NoError(mt.t, mt.mgr.EraUpdateActive(rec))
	}
	return mt
}

func (mt *managerTest) updateRate() *managerTest {
	require.NoError(mt.t, mt.mgr.EraUpdateRate())
	return mt
}

func (mt *managerTest) eraWithdraw(rec rstake.Address) *managerTest {
	require.NoError(mt.t, mt.mgr.EraWithdraw(rec, mt.epoch))
	return mt
}

// bondCycle runs a whole era that only bonds into rec.
func (mt *managerTest) bondCycle(validator, rec rstake.Address) *managerTest {
	mt.advance(1).eraNew().bond(validator, rec)
	return mt.updateActive(mt.ledger().EraProcessData.PendingStakeAccounts.List()...).updateRate()
}

func (mt *managerTest) assertActive(expected uint64) *managerTest {
	assert.Equal(mt.t, expected, mt.ledger().Active, "active mismatch")
	return mt
}

func (mt *managerTest) assertRate(expected uint64) *managerTest {
	assert.Equal(mt.t, expected, mt.ledger().Rate, "rate mismatch")
	return mt
}

func (mt *managerTest) assertWorkOrderEmpty(empty bool) *managerTest {
	l := mt.ledger()
	assert.Equal(mt.t, empty, l.EraProcessData.IsEmpty(), "work order emptiness mismatch: %+v", l.EraProcessData)
	return mt
}

func (mt *managerTest) assertDerivative(owner rstake.Address, expected uint64) *managerTest {
	balance, err := mt.minter.BalanceOf(owner)
	require.NoError(mt.t, err)
	assert.Equal(mt.t, expected, balance, "derivative balance of %v", owner)
	return mt
}

func (mt *managerTest) assertBalance(addr rstake.Address, expected uint64) *managerTest {
	balance, err := mt.bank.Balance(addr)
	require.NoError(mt.t, err)
	assert.Equal(mt.t, expected, balance, "balance of %v", addr)
	return mt
}

func (mt *managerTest) assertStake(rec rstake.Address, expected uint64) *managerTest {
	d, err := mt.prog.Delegation(rec)
	require.NoError(mt.t, err)
	require.NotNil(mt.t, d, "no delegation on %v", rec)
	assert.Equal(mt.t, expected, d.Stake, "stake of %v", rec)
	return mt
}

// assertReconciled checks the active stake of tracked records against the ledger.
func (mt *managerTest) assertReconciled() *managerTest {
	l := mt.ledger()
	var sum uint64
	for _, rec := range l.StakeAccounts.List() {
		d, err := mt.prog.Delegation(rec)
		require.NoError(mt.t, err)
		require.NotNil(mt.t, d)
		sum += d.Stake
	}
	assert.Equal(mt.t, l.Active+l.EraUnbond-l.EraBond, sum, "tracked stake does not reconcile with active")
	return mt
}
