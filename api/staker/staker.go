// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/rstake/node/api/utils"
	"github.com/rstake/node/builtin/stakemgr"
	"github.com/rstake/node/rstake"
	"github.com/rstake/node/runtime"
)

type Staker struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Staker {
	return &Staker{rt}
}

func (s *Staker) handleStake(w http.ResponseWriter, req *http.Request) error {
	var body StakeRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := s.rt.Exec(req.Context(), string(stakemgr.KindStake), func(env *runtime.Env) error {
		return env.Manager.Stake(body.Staker, uint64(body.Amount))
	})
	if err != nil {
		return utils.OperationError(err)
	}
	return utils.WriteJSON(w, receipt)
}

func (s *Staker) handleUnstake(w http.ResponseWriter, req *http.Request) error {
	var body UnstakeRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	owner := body.Caller
	if body.Owner != nil {
		owner = *body.Owner
	}

	var id rstake.Address
	receipt, err := s.rt.Exec(req.Context(), string(stakemgr.KindUnstake), func(env *runtime.Env) (err error) {
		id, err = env.Manager.Unstake(body.Caller, owner, uint64(body.Amount), env.Epoch)
		return
	})
	if err != nil {
		return utils.OperationError(err)
	}
	return utils.WriteJSON(w, &UnstakeResponse{Receipt: receipt, UnstakeAccount: id})
}

func (s *Staker) handleWithdraw(w http.ResponseWriter, req *http.Request) error {
	var body WithdrawRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := s.rt.Exec(req.Context(), string(stakemgr.KindWithdraw), func(env *runtime.Env) error {
		return env.Manager.Withdraw(body.UnstakeAccount, env.Epoch)
	})
	if err != nil {
		return utils.OperationError(err)
	}
	return utils.WriteJSON(w, receipt)
}

func (s *Staker) handleApprove(w http.ResponseWriter, req *http.Request) error {
	var body ApproveRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := s.rt.Exec(req.Context(), "approve", func(env *runtime.Env) error {
		return env.Minter.Approve(body.Owner, body.Delegate, uint64(body.Amount))
	})
	if err != nil {
		return utils.OperationError(err)
	}
	return utils.WriteJSON(w, receipt)
}

func parseAddress(req *http.Request, name string) (rstake.Address, error) {
	addr, err := rstake.ParseAddress(mux.Vars(req)[name])
	if err != nil {
		return rstake.Address{}, utils.BadRequest(errors.WithMessage(err, name))
	}
	return *addr, nil
}

func (s *Staker) handleGetUnstakeAccount(w http.ResponseWriter, req *http.Request) error {
	id, err := parseAddress(req, "id")
	if err != nil {
		return err
	}
	var result *UnstakeAccount
	err = s.rt.View(req.Context(), func(env *runtime.Env) error {
		acc, err := env.Manager.UnstakeAccount(id)
		if err != nil {
			return err
		}
		if acc == nil {
			return utils.NotFound(errors.Errorf("unstake account %v not found", id))
		}
		result = &UnstakeAccount{
			ID:           id,
			StakeManager: acc.StakeManager,
			Recipient:    acc.Recipient,
			Amount:       acc.Amount,
			CreatedEpoch: acc.CreatedEpoch,
		}
		// accounts of another manager carry no claimable epoch here
		if acc.StakeManager == env.Manager.Address() {
			l, err := env.Manager.Ledger()
			if err != nil {
				return err
			}
			result.ClaimableEpoch = acc.CreatedEpoch + l.UnbondingDuration
			result.Claimable = env.Epoch >= result.ClaimableEpoch
		}
		return nil
	})
	if err != nil {
		return utils.OperationError(err)
	}
	return utils.WriteJSON(w, result)
}

func (s *Staker) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := parseAddress(req, "address")
	if err != nil {
		return err
	}
	result := &Account{Address: addr}
	err = s.rt.View(req.Context(), func(env *runtime.Env) error {
		balance, err := env.Bank.Balance(addr)
		if err != nil {
			return err
		}
		tok, err := env.Minter.Account(addr)
		if err != nil {
			return err
		}
		result.Balance = balance
		result.Derivative = Derivative{
			Balance:         tok.Balance,
			DelegatedAmount: tok.DelegatedAmount,
		}
		if !tok.Delegate.IsZero() {
			delegate := tok.Delegate
			result.Derivative.Delegate = &delegate
		}
		return nil
	})
	if err != nil {
		return utils.OperationError(err)
	}
	return utils.WriteJSON(w, result)
}

func (s *Staker) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/stake").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(s.handleStake))
	sub.Path("/unstake").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(s.handleUnstake))
	sub.Path("/withdraw").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(s.handleWithdraw))
	sub.Path("/approve").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(s.handleApprove))
	sub.Path("/unstakes/{id}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(s.handleGetUnstakeAccount))
	sub.Path("/accounts/{address}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(s.handleGetAccount))
}
