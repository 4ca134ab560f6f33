// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakeprog

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/rstake/node/lvldb"
	"github.com/rstake/node/rstake"
	"github.com/rstake/node/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pool   = rstake.BytesToAddress([]byte("pool"))
	payer  = rstake.BytesToAddress([]byte("payer"))
	voterA = rstake.BytesToAddress([]byte("voter-a"))
	voterB = rstake.BytesToAddress([]byte("voter-b"))
	recA   = rstake.BytesToAddress([]byte("record-a"))
	recB   = rstake.BytesToAddress([]byte("record-b"))
	recC   = rstake.BytesToAddress([]byte("record-c"))
)

const reserve = 1000

type progTest struct {
	*Program
	t  *testing.T
	st *state.State
}

func newTest(t *testing.T) *progTest {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.New(db)
	p := New(rstake.StakeProgramAddress, st)
	require.NoError(t, p.SetReserve(reserve))
	require.NoError(t, st.SetBalance(payer, 1_000_000))
	require.NoError(t, st.SetBalance(pool, 1_000_000))
	return &progTest{Program: p, t: t, st: st}
}

// open creates a record and funds it with stake from the pool.
func (pt *progTest) open(addr rstake.Address, stake uint64) *progTest {
	require.NoError(pt.t, pt.Create(payer, addr, pool))
	require.NoError(pt.t, pt.bank.Transfer(pool, addr, stake))
	return pt
}

func (pt *progTest) assertBalance(addr rstake.Address, expected uint64) *progTest {
	balance, err := pt.Balance(addr)
	assert.NoError(pt.t, err)
	assert.Equal(pt.t, expected, balance, "balance of %v", addr)
	return pt
}

func (pt *progTest) assertStake(addr rstake.Address, expected uint64) *progTest {
	d, err := pt.Delegation(addr)
	require.NoError(pt.t, err)
	require.NotNil(pt.t, d, "delegation of %v", addr)
	assert.Equal(pt.t, expected, d.Stake, "stake of %v", addr)
	return pt
}

func TestReserveDefault(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	p := New(rstake.StakeProgramAddress, state.New(db))
	r, err := p.Reserve()
	assert.NoError(t, err)
	assert.Equal(t, DefaultReserve, r)
}

func TestCreateDelegate(t *testing.T) {
	pt := newTest(t)

	d, err := pt.Delegation(recA)
	assert.NoError(t, err)
	assert.Nil(t, d)

	pt.open(recA, 5000).assertBalance(recA, 6000).assertBalance(payer, 1_000_000-reserve)

	err = pt.Create(payer, recA, pool)
	assert.True(t, errors.Is(err, ErrRecordExists))

	assert.Equal(t, ErrAuthorityNotMatch, pt.Delegate(recA, payer, voterA, 1))
	require.NoError(t, pt.Delegate(recA, pool, voterA, 1))
	assert.Equal(t, ErrAlreadyDelegated, pt.Delegate(recA, pool, voterA, 1))

	d, err = pt.Delegation(recA)
	assert.NoError(t, err)
	assert.Equal(t, &Delegation{Voter: voterA, Stake: 5000, ActivationEpoch: 1, DeactivationEpoch: rstake.MaxEpoch}, d)
	assert.True(t, d.IsActive())

	require.NoError(t, pt.Create(payer, recB, pool))
	assert.Equal(t, ErrInsufficientStake, pt.Delegate(recB, pool, voterA, 1))
}

func TestSplitMerge(t *testing.T) {
	pt := newTest(t)
	pt.open(recA, 5000)
	require.NoError(t, pt.Delegate(recA, pool, voterA, 1))
	require.NoError(t, pt.Create(payer, recB, pool))

	err := pt.Split(recA, pool, 5000, recB)
	assert.True(t, errors.Is(err, ErrInvalidAmount))

	require.NoError(t, pt.Split(recA, pool, 2000, recB))
	pt.assertStake(recA, 3000).assertStake(recB, 2000).
		assertBalance(recA, 4000).assertBalance(recB, 3000)

	require.NoError(t, pt.Merge(recA, recB, pool))
	pt.assertStake(recA, 5000).assertBalance(recA, 7000).assertBalance(recB, 0)

	rec, err := pt.Record(recB)
	assert.NoError(t, err)
	assert.Nil(t, rec)

	pt.open(recC, 3000)
	require.NoError(t, pt.Delegate(recC, pool, voterB, 1))
	assert.Equal(t, ErrVoterNotMatch, pt.Merge(recA, recC, pool))

	require.NoError(t, pt.Deactivate(recC, pool, 2))
	assert.Equal(t, ErrNotActive, pt.Merge(recA, recC, pool))
}

func TestDeactivateWithdraw(t *testing.T) {
	pt := newTest(t)
	pt.open(recA, 5000)
	require.NoError(t, pt.Delegate(recA, pool, voterA, 1))

	assert.Equal(t, ErrStakeLocked, pt.Withdraw(recA, pool, pool, 6000, 2))

	require.NoError(t, pt.Deactivate(recA, pool, 2))
	assert.Equal(t, ErrNotActive, pt.Deactivate(recA, pool, 2))
	assert.Equal(t, ErrStakeLocked, pt.Withdraw(recA, pool, pool, 6000, 2))

	err := pt.Withdraw(recA, pool, pool, 5500, 3)
	assert.True(t, errors.Is(err, ErrInsufficientFunds), "must keep the reserve")

	require.NoError(t, pt.Withdraw(recA, pool, pool, 5000, 3))
	pt.assertBalance(recA, reserve)

	require.NoError(t, pt.Withdraw(recA, pool, pool, reserve, 3))
	pt.assertBalance(recA, 0).assertBalance(pool, 1_000_000+reserve)

	rec, err := pt.Record(recA)
	assert.NoError(t, err)
	assert.Nil(t, rec)
}

func TestWithdrawPlaceholder(t *testing.T) {
	pt := newTest(t)
	require.NoError(t, pt.Create(payer, recA, pool))
	require.NoError(t, pt.Withdraw(recA, pool, payer, reserve, 0))
	pt.assertBalance(payer, 1_000_000)

	err := pt.Withdraw(recA, pool, payer, reserve, 0)
	assert.True(t, errors.Is(err, ErrRecordNotFound))
}

func TestRedelegate(t *testing.T) {
	pt := newTest(t)
	pt.open(recA, 5000)
	require.NoError(t, pt.Delegate(recA, pool, voterA, 1))
	require.NoError(t, pt.Create(payer, recB, pool))

	assert.Equal(t, ErrSameVoter, pt.Redelegate(recA, pool, voterA, recB, 2))
	require.NoError(t, pt.Redelegate(recA, pool, voterB, recB, 2))

	pt.assertBalance(recA, reserve).assertBalance(recB, 5000+reserve)

	d, err := pt.Delegation(recB)
	assert.NoError(t, err)
	assert.Equal(t, &Delegation{Voter: voterB, Stake: 5000, ActivationEpoch: 2, DeactivationEpoch: rstake.MaxEpoch}, d)

	d, err = pt.Delegation(recA)
	assert.NoError(t, err)
	assert.False(t, d.IsActive())
	assert.Equal(t, uint64(2), d.DeactivationEpoch)
	assert.Zero(t, d.Stake)
}

func TestAddRewards(t *testing.T) {
	pt := newTest(t)
	pt.open(recA, 5000)
	assert.Equal(t, ErrNotDelegated, pt.AddRewards(recA, 10))

	require.NoError(t, pt.Delegate(recA, pool, voterA, 1))
	require.NoError(t, pt.AddRewards(recA, 10))
	pt.assertStake(recA, 5010).assertBalance(recA, 6010)
}
