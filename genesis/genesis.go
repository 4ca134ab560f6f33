// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis describes the initial world of a pool: funded accounts,
// the derivative mint, the delegation reserve and the initialized ledger.
package genesis

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/rstake/node/builtin/stakemgr"
	"github.com/rstake/node/rstake"
	"github.com/rstake/node/state"
)

// Account is a funded base asset account.
type Account struct {
	Address rstake.Address `yaml:"address"`
	Balance uint64         `yaml:"balance"`
}

// Params overrides ledger defaults. Nil fields keep the default.
type Params struct {
	MinStakeAmount        *uint64 `yaml:"minStakeAmount,omitempty"`
	UnbondingDuration     *uint64 `yaml:"unbondingDuration,omitempty"`
	UnstakeFeeCommission  *uint64 `yaml:"unstakeFeeCommission,omitempty"`
	ProtocolFeeCommission *uint64 `yaml:"protocolFeeCommission,omitempty"`
	RateChangeLimit       *uint64 `yaml:"rateChangeLimit,omitempty"`
	StakeAccountsLenLimit *uint64 `yaml:"stakeAccountsLenLimit,omitempty"`
	SplitAccountsLenLimit *uint64 `yaml:"splitAccountsLenLimit,omitempty"`
}

// Genesis is the yaml description of a pool.
type Genesis struct {
	Manager         rstake.Address   `yaml:"manager"`
	Admin           rstake.Address   `yaml:"admin"`
	Balancer        *rstake.Address  `yaml:"balancer,omitempty"`
	FeeRecipient    rstake.Address   `yaml:"feeRecipient"`
	Validators      []rstake.Address `yaml:"validators"`
	Reserve         uint64           `yaml:"reserve,omitempty"`
	MintAuthorities []rstake.Address `yaml:"mintAuthorities,omitempty"`
	LatestEra       uint64           `yaml:"latestEra,omitempty"`
	Accounts        []Account        `yaml:"accounts"`
	Params          Params           `yaml:"params"`
}

// Load reads and validates a genesis file.
func Load(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis")
	}
	return Parse(data)
}

// Parse decodes and validates a yaml genesis.
func Parse(data []byte) (*Genesis, error) {
	var gen Genesis
	if err := yaml.Unmarshal(data, &gen); err != nil {
		return nil, errors.Wrap(err, "decode genesis")
	}
	if err := gen.Validate(); err != nil {
		return nil, err
	}
	return &gen, nil
}

// Validate checks the genesis is complete.
func (g *Genesis) Validate() error {
	if g.Manager.IsZero() {
		return errors.New("manager is required")
	}
	if g.Admin.IsZero() {
		return errors.New("admin is required")
	}
	if g.FeeRecipient.IsZero() {
		return errors.New("feeRecipient is required")
	}
	if len(g.Validators) == 0 {
		return errors.New("at least one validator is required")
	}
	seen := make(map[rstake.Address]bool)
	for _, v := range g.Validators {
		if seen[v] {
			return errors.Errorf("duplicated validator %v", v)
		}
		seen[v] = true
	}
	pool := rstake.PoolAddress(g.Manager)
	for _, acc := range g.Accounts {
		if acc.Address == pool {
			return errors.New("pool custody can not be funded by genesis")
		}
	}
	return nil
}

// Encode returns the yaml form of the genesis.
func (g *Genesis) Encode() ([]byte, error) {
	return yaml.Marshal(g)
}

// ID identifies the ledger the genesis produces.
func (g *Genesis) ID() (rstake.Bytes32, error) {
	return g.builder().ComputeID()
}

// Build writes the genesis world into st. Changes are left uncommitted.
func (g *Genesis) Build(st *state.State) error {
	return g.builder().Build(st)
}

func (g *Genesis) builder() *Builder {
	return new(Builder).
		Manager(g.Manager).
		State(func(w *World) error {
			for _, acc := range g.Accounts {
				if err := w.Bank.Mint(acc.Address, acc.Balance); err != nil {
					return err
				}
			}
			if g.Reserve != 0 {
				return w.Program.SetReserve(g.Reserve)
			}
			return nil
		}).
		State(func(w *World) error {
			authorities := append([]rstake.Address{w.Manager.Pool()}, g.MintAuthorities...)
			return w.Minter.Initialize(g.Admin, authorities)
		}).
		State(func(w *World) error {
			if err := w.Bank.Mint(w.Manager.Pool(), rstake.PoolRentExempt); err != nil {
				return err
			}
			return w.Manager.Initialize(g.Admin, &stakemgr.InitializeData{
				DerivativeMint: w.Minter.Address(),
				FeeRecipient:   g.FeeRecipient,
				Validator:      g.Validators[0],
				LatestEra:      g.LatestEra,
				Rate:           rstake.CalBase,
			})
		}).
		State(func(w *World) error {
			return g.applyParams(w.Manager)
		})
}

func (g *Genesis) applyParams(mgr *stakemgr.Manager) error {
	for _, v := range g.Validators[1:] {
		if err := mgr.AddValidator(g.Admin, v); err != nil {
			return err
		}
	}

	p := g.Params
	setters := []struct {
		value *uint64
		set   func(caller rstake.Address, v uint64) error
	}{
		{p.MinStakeAmount, mgr.SetMinStakeAmount},
		{p.UnbondingDuration, mgr.SetUnbondingDuration},
		{p.UnstakeFeeCommission, mgr.SetUnstakeFeeCommission},
		{p.ProtocolFeeCommission, mgr.SetProtocolFeeCommission},
		{p.RateChangeLimit, mgr.SetRateChangeLimit},
	}
	for _, s := range setters {
		if s.value != nil {
			if err := s.set(g.Admin, *s.value); err != nil {
				return err
			}
		}
	}

	if p.StakeAccountsLenLimit != nil || p.SplitAccountsLenLimit != nil {
		stake, split := rstake.DefaultStakeAccountsLenLimit, rstake.DefaultSplitAccountsLenLimit
		if p.StakeAccountsLenLimit != nil {
			stake = *p.StakeAccountsLenLimit
		}
		if p.SplitAccountsLenLimit != nil {
			split = *p.SplitAccountsLenLimit
		}
		if err := mgr.SetAccountsLenLimit(g.Admin, stake, split); err != nil {
			return err
		}
	}

	if g.Balancer != nil {
		return mgr.SetBalancer(g.Admin, *g.Balancer)
	}
	return nil
}
