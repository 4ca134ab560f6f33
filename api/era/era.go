// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package era exposes the era cycle operations run by the balancer.
package era

import (
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/rstake/node/api/utils"
	"github.com/rstake/node/builtin/stakemgr"
	"github.com/rstake/node/runtime"
)

type Era struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Era {
	return &Era{rt}
}

// operation parses a request of type T and runs op with it.
func operation[T any](rt *runtime.Runtime, kind stakemgr.Kind, op func(env *runtime.Env, body *T) error) utils.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) error {
		var body T
		if err := utils.ParseJSON(req.Body, &body); err != nil && err != io.EOF {
			return utils.BadRequest(errors.WithMessage(err, "body"))
		}
		receipt, err := rt.Exec(req.Context(), string(kind), func(env *runtime.Env) error {
			return op(env, &body)
		})
		if err != nil {
			return utils.OperationError(err)
		}
		return utils.WriteJSON(w, receipt)
	}
}

type empty struct{}

func eraNew(env *runtime.Env, _ *empty) error {
	return env.Manager.EraNew(env.Epoch)
}

func eraBond(env *runtime.Env, body *BondRequest) error {
	return env.Manager.EraBond(body.Validator, body.StakeAccount, body.Payer, env.Epoch)
}

func eraUnbond(env *runtime.Env, body *UnbondRequest) error {
	return env.Manager.EraUnbond(body.Validator, body.StakeAccount, body.SplitAccount, body.Payer, env.Epoch)
}

func eraUpdateActive(env *runtime.Env, body *UpdateActiveRequest) error {
	return env.Manager.EraUpdateActive(body.StakeAccount)
}

func eraUpdateRate(env *runtime.Env, _ *empty) error {
	return env.Manager.EraUpdateRate()
}

func eraMerge(env *runtime.Env, body *MergeRequest) error {
	return env.Manager.EraMerge(body.SrcStakeAccount, body.DstStakeAccount)
}

func eraWithdraw(env *runtime.Env, body *WithdrawRequest) error {
	return env.Manager.EraWithdraw(body.StakeAccount, env.Epoch)
}

func redelegate(env *runtime.Env, body *RedelegateRequest) error {
	return env.Manager.Redelegate(
		body.Caller,
		uint64(body.Amount),
		body.ToValidator,
		body.FromStakeAccount,
		body.SplitStakeAccount,
		body.ToStakeAccount,
		body.Payer,
		env.Epoch,
	)
}

func (e *Era) handleTick(w http.ResponseWriter, req *http.Request) error {
	clock, ok := e.rt.Clock().(*runtime.ManualClock)
	if !ok {
		return utils.HTTPError(errors.New("clock is not manual"), http.StatusForbidden)
	}
	var body TickRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil && err != io.EOF {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	epochs := uint64(1)
	if body.Epochs != nil {
		epochs = uint64(*body.Epochs)
	}
	return utils.WriteJSON(w, &TickResponse{Epoch: clock.Advance(epochs)})
}

// Mount registers the era routes. The tick route is only mounted when enableTick is set.
func (e *Era) Mount(root *mux.Router, pathPrefix string, enableTick bool) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/new").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(operation(e.rt, stakemgr.KindEraNew, eraNew)))
	sub.Path("/bond").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(operation(e.rt, stakemgr.KindEraBond, eraBond)))
	sub.Path("/unbond").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(operation(e.rt, stakemgr.KindEraUnbond, eraUnbond)))
	sub.Path("/update-active").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(operation(e.rt, stakemgr.KindEraUpdateActive, eraUpdateActive)))
	sub.Path("/update-rate").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(operation(e.rt, stakemgr.KindEraUpdateRate, eraUpdateRate)))
	sub.Path("/merge").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(operation(e.rt, stakemgr.KindEraMerge, eraMerge)))
	sub.Path("/withdraw").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(operation(e.rt, stakemgr.KindEraWithdraw, eraWithdraw)))
	sub.Path("/redelegate").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(operation(e.rt, stakemgr.KindRedelegate, redelegate)))
	if enableTick {
		sub.Path("/tick").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(e.handleTick))
	}
}
