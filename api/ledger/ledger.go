// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/rstake/node/api/utils"
	"github.com/rstake/node/builtin/stakemgr"
	"github.com/rstake/node/rstake"
	"github.com/rstake/node/runtime"
)

type Handler struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Handler {
	return &Handler{rt}
}

func (h *Handler) getLedger(req *http.Request) (*Ledger, error) {
	var result *Ledger
	err := h.rt.View(req.Context(), func(env *runtime.Env) error {
		l, err := env.Manager.Ledger()
		if err != nil {
			return err
		}
		if !l.IsInitialized() {
			return utils.NotFound(stakemgr.ErrNotInitialized)
		}
		balance, err := env.Manager.PoolBalance()
		if err != nil {
			return err
		}
		result = newLedger(env.Manager.Address(), env.Manager.Pool(), balance, l)
		return nil
	})
	if err != nil {
		return nil, utils.OperationError(err)
	}
	return result, nil
}

func (h *Handler) handleGetLedger(w http.ResponseWriter, req *http.Request) error {
	l, err := h.getLedger(req)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, l)
}

func (h *Handler) handleGetWorkOrder(w http.ResponseWriter, req *http.Request) error {
	l, err := h.getLedger(req)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, l.WorkOrder)
}

func (h *Handler) handleInitialize(w http.ResponseWriter, req *http.Request) error {
	var body InitializeRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := h.rt.Exec(req.Context(), string(stakemgr.KindInitialize), func(env *runtime.Env) error {
		mint := env.Minter.Address()
		if body.DerivativeMint != nil {
			mint = *body.DerivativeMint
		}
		return env.Manager.Initialize(body.Caller, &stakemgr.InitializeData{
			DerivativeMint:        mint,
			FeeRecipient:          body.FeeRecipient,
			Validator:             body.Validator,
			Bond:                  uint64(body.Bond),
			Unbond:                uint64(body.Unbond),
			Active:                uint64(body.Active),
			LatestEra:             uint64(body.LatestEra),
			Rate:                  uint64(body.Rate),
			TotalDerivativeSupply: uint64(body.TotalDerivativeSupply),
			TotalProtocolFee:      uint64(body.TotalProtocolFee),
		})
	})
	if err != nil {
		return utils.OperationError(err)
	}
	return utils.WriteJSON(w, receipt)
}

// adminOp binds an admin operation to the request fields it reads.
type adminOp func(mgr *stakemgr.Manager, body *AdminRequest) error

func withAddress(f func(mgr *stakemgr.Manager, caller, addr rstake.Address) error) adminOp {
	return func(mgr *stakemgr.Manager, body *AdminRequest) error {
		if body.Address == nil {
			return utils.BadRequest(errors.New("address: required"))
		}
		return f(mgr, body.Caller, *body.Address)
	}
}

func withValue(f func(mgr *stakemgr.Manager, caller rstake.Address, v uint64) error) adminOp {
	return func(mgr *stakemgr.Manager, body *AdminRequest) error {
		if body.Value == nil {
			return utils.BadRequest(errors.New("value: required"))
		}
		return f(mgr, body.Caller, uint64(*body.Value))
	}
}

var adminOps = map[string]adminOp{
	"transfer-admin":              withAddress((*stakemgr.Manager).TransferAdmin),
	"set-balancer":                withAddress((*stakemgr.Manager).SetBalancer),
	"add-validator":               withAddress((*stakemgr.Manager).AddValidator),
	"remove-validator":            withAddress((*stakemgr.Manager).RemoveValidator),
	"set-min-stake-amount":        withValue((*stakemgr.Manager).SetMinStakeAmount),
	"set-unbonding-duration":      withValue((*stakemgr.Manager).SetUnbondingDuration),
	"set-unstake-fee-commission":  withValue((*stakemgr.Manager).SetUnstakeFeeCommission),
	"set-protocol-fee-commission": withValue((*stakemgr.Manager).SetProtocolFeeCommission),
	"set-rate-change-limit":       withValue((*stakemgr.Manager).SetRateChangeLimit),
	"set-accounts-len-limit": func(mgr *stakemgr.Manager, body *AdminRequest) error {
		if body.StakeLimit == nil || body.SplitLimit == nil {
			return utils.BadRequest(errors.New("stakeLimit, splitLimit: required"))
		}
		return mgr.SetAccountsLenLimit(body.Caller, uint64(*body.StakeLimit), uint64(*body.SplitLimit))
	},
}

func (h *Handler) handleAdmin(w http.ResponseWriter, req *http.Request) error {
	name := mux.Vars(req)["op"]
	op, ok := adminOps[name]
	if !ok {
		return utils.NotFound(errors.Errorf("unknown admin operation %q", name))
	}
	var body AdminRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := h.rt.Exec(req.Context(), "admin_"+name, func(env *runtime.Env) error {
		return op(env.Manager, &body)
	})
	if err != nil {
		return utils.OperationError(err)
	}
	return utils.WriteJSON(w, receipt)
}

func (h *Handler) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(h.handleGetLedger))
	sub.Path("/era").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(h.handleGetWorkOrder))
	sub.Path("/initialize").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(h.handleInitialize))
	sub.Path("/admin/{op}").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(h.handleAdmin))
}
