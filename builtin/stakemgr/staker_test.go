// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakemgr

import (
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rstake/node/builtin/stakemgr/calc"
	"github.com/rstake/node/builtin/stakemgr/reverts"
	"github.com/rstake/node/builtin/stakemgr/unstake"
	"github.com/rstake/node/rstake"
)

func TestStake(t *testing.T) {
	mt := newTest(t)

	mt.stake(alice, 10_000_000).
		assertDerivative(alice, 10_000_000).
		assertActive(10_000_000).
		assertBalance(alice, stakerFunds-10_000_000).
		assertBalance(mt.mgr.Pool(), rstake.PoolRentExempt+10_000_000)

	l := mt.ledger()
	assert.Equal(t, uint64(10_000_000), l.EraBond)
	assert.Equal(t, uint64(10_000_000), l.TotalDerivativeSupply)

	events := mt.mgr.TakeEvents()
	require.Len(t, events, 1)
	assert.Equal(t, &Event{
		Kind: KindStake,
		Payload: &StakeEvent{
			Staker:           alice,
			MintTo:           alice,
			StakeAmount:      10_000_000,
			DerivativeAmount: 10_000_000,
		},
	}, events[0])
	assert.Empty(t, mt.mgr.TakeEvents())
}

func TestStakeReverts(t *testing.T) {
	mt := newTest(t)
	before := mt.snapshot()

	assertRevert(t, mt.mgr.Stake(alice, 0), reverts.StakeAmountTooLow)
	assertRevert(t, mt.mgr.Stake(alice, rstake.DefaultMinStakeAmount-1), reverts.StakeAmountTooLow)
	assertRevert(t, mt.mgr.Stake(alice, stakerFunds+1), reverts.BalanceNotEnough)

	assert.Equal(t, before, mt.snapshot())
	assert.Empty(t, mt.mgr.TakeEvents())
	mt.assertBalance(alice, stakerFunds).assertDerivative(alice, 0)
}

func TestNotInitialized(t *testing.T) {
	mt := newUninitialized(t)

	err := mt.mgr.Stake(alice, 10_000_000)
	assert.True(t, errors.Is(err, ErrNotInitialized))
	assert.False(t, reverts.IsRevertErr(err))

	l, err := mt.mgr.Ledger()
	assert.NoError(t, err)
	assert.Nil(t, l)
}

func TestUnstakeWithFee(t *testing.T) {
	mt := newTest(t)
	require.NoError(t, mt.mgr.SetUnstakeFeeCommission(admin, 100_000_000))
	mt.stake(alice, 10_000_000)
	mt.mgr.TakeEvents()

	id := mt.unstake(alice, 2_000_000)

	mt.assertDerivative(alice, 8_000_000).
		assertDerivative(feeRecipient, 200_000).
		assertActive(8_200_000)

	l := mt.ledger()
	assert.Equal(t, uint64(1_800_000), l.EraUnbond)
	assert.Equal(t, uint64(200_000), l.TotalProtocolFee)
	assert.Equal(t, uint64(8_200_000), l.TotalDerivativeSupply)

	supply, err := mt.minter.TotalSupply()
	assert.NoError(t, err)
	assert.Equal(t, l.TotalDerivativeSupply, supply)

	acc, err := mt.mgr.UnstakeAccount(id)
	assert.NoError(t, err)
	assert.Equal(t, &unstake.Account{
		StakeManager: managerAddr,
		Recipient:    alice,
		Amount:       1_800_000,
		CreatedEpoch: 0,
	}, acc)

	events := mt.mgr.TakeEvents()
	require.Len(t, events, 1)
	assert.Equal(t, KindUnstake, events[0].Kind)
	assert.Equal(t, &UnstakeEvent{
		Staker:         alice,
		BurnFrom:       alice,
		UnstakeAccount: id,
		UnstakeAmount:  2_000_000,
		BaseAmount:     1_800_000,
		UnstakeFee:     200_000,
	}, events[0].Payload)
}

func TestUnstakeAuthority(t *testing.T) {
	mt := newTest(t)
	mt.stake(alice, 10_000_000)
	before := mt.snapshot()

	_, err := mt.mgr.Unstake(alice, alice, 0, 0)
	assertRevert(t, err, reverts.UnstakeAmountIsZero)

	_, err = mt.mgr.Unstake(alice, alice, 10_000_001, 0)
	assertRevert(t, err, reverts.BalanceNotEnough)

	_, err = mt.mgr.Unstake(bob, alice, 1_000_000, 0)
	assertRevert(t, err, reverts.AuthorityNotMatch)

	require.NoError(t, mt.minter.Approve(alice, bob, 1_000_000))
	_, err = mt.mgr.Unstake(bob, alice, 1_000_001, 0)
	assertRevert(t, err, reverts.BalanceNotEnough)
	assert.Equal(t, before, mt.snapshot())

	id, err := mt.mgr.Unstake(bob, alice, 1_000_000, 0)
	require.NoError(t, err)

	acc, err := mt.mgr.UnstakeAccount(id)
	require.NoError(t, err)
	assert.Equal(t, alice, acc.Recipient, "the owner receives the base asset")
	mt.assertDerivative(alice, 9_000_000).assertDerivative(bob, 0)

	tokenAcc, err := mt.minter.Account(alice)
	require.NoError(t, err)
	assert.Zero(t, tokenAcc.DelegatedAmount)
}

func TestUnstakeIDs(t *testing.T) {
	mt := newTest(t)
	mt.stake(alice, 10_000_000)

	first := mt.unstake(alice, 1_000_000)
	second := mt.unstake(alice, 1_000_000)
	assert.NotEqual(t, first, second)
	assert.Equal(t, rstake.DeriveAddress(managerAddr.Bytes(), []byte("unstake"), rstake.Uint64Seed(0)), first)
}

func TestWithdraw(t *testing.T) {
	mt := newTest(t)
	mt.stake(alice, 10_000_000).advance(5)
	id := mt.unstake(alice, 4_000_000)

	assertRevert(t, mt.mgr.Withdraw(rstake.BytesToAddress([]byte("unknown")), 10), reverts.InvalidUnstakeAccount)

	// the account belongs to another manager
	other := New(rstake.BytesToAddress([]byte("other-manager")), mt.state, mt.minter, mt.bank, mt.prog)
	require.NoError(t, mt.bank.Mint(other.Pool(), rstake.PoolRentExempt))
	require.NoError(t, other.Initialize(admin, initData()))
	assertRevert(t, other.Withdraw(id, 10), reverts.InvalidUnstakeAccount)

	// claimable from created epoch + unbonding duration
	assertRevert(t, mt.mgr.Withdraw(id, 6), reverts.UnstakeAccountNotClaimable)
	mt.mgr.TakeEvents()
	require.NoError(t, mt.mgr.Withdraw(id, 7))

	mt.assertBalance(alice, stakerFunds-10_000_000+4_000_000).
		assertBalance(mt.mgr.Pool(), rstake.PoolRentExempt+6_000_000)

	acc, err := mt.mgr.UnstakeAccount(id)
	assert.NoError(t, err)
	assert.Nil(t, acc)

	events := mt.mgr.TakeEvents()
	require.Len(t, events, 1)
	assert.Equal(t, &WithdrawEvent{Staker: alice, UnstakeAccount: id, WithdrawAmount: 4_000_000}, events[0].Payload)

	assertRevert(t, mt.mgr.Withdraw(id, 7), reverts.InvalidUnstakeAccount)
}

func TestWithdrawPoolBalanceNotEnough(t *testing.T) {
	mt := newTest(t)
	mt.stake(alice, 10_000_000).bondCycle(validatorA, record("a"))
	mt.assertBalance(mt.mgr.Pool(), rstake.PoolRentExempt)

	id := mt.unstake(alice, 4_000_000)
	mt.advance(rstake.DefaultUnbondingDuration)
	assertRevert(t, mt.mgr.Withdraw(id, mt.epoch), reverts.PoolBalanceNotEnough)
}

// Minting never outruns what active can redeem, and a round trip loses at most one unit.
func TestStakeRedeemable(t *testing.T) {
	mt := newUninitialized(t)
	require.NoError(t, mt.bank.Mint(mt.mgr.Pool(), rstake.PoolRentExempt))
	data := initData()
	data.Active, data.TotalDerivativeSupply = 3_000_000, 2_000_000
	data.Rate = 1_500_000_000
	require.NoError(t, mt.mgr.Initialize(admin, data))

	f := fuzz.New().NilChance(0)
	var spent uint64
	for range 100 {
		var amount uint64
		f.Fuzz(&amount)
		amount = rstake.DefaultMinStakeAmount + amount%(500_000)
		if spent+amount > stakerFunds {
			break
		}
		spent += amount
		mt.stake(alice, amount)

		l := mt.ledger()
		redeemable, err := calc.ToBase(l.TotalDerivativeSupply, l.Rate)
		require.NoError(t, err)
		assert.LessOrEqual(t, redeemable, l.Active)

		derivative, err := calc.ToDerivative(amount, l.Rate)
		require.NoError(t, err)
		back, err := calc.ToBase(derivative, l.Rate)
		require.NoError(t, err)
		assert.LessOrEqual(t, amount-back, uint64(1))
	}
}
