package rpc

import (
	"context"
	"encoding/json"

	"creatorfund/native/token"
)

func (s *Server) handleGetTokenAccount(_ context.Context, raw json.RawMessage) (interface{}, *rpcFailure) {
	var params addressParams
	if failure := decodeParams(raw, &params); failure != nil {
		return nil, failure
	}
	addr, failure := parseAddress("address", params.Address)
	if failure != nil {
		return nil, failure
	}
	account, err := token.ReadAccount(s.state, addr)
	if err != nil {
		return nil, failureFromError("failed to load token account", err)
	}
	return formatTokenAccount(addr, account), nil
}

func (s *Server) handleGetMint(_ context.Context, raw json.RawMessage) (interface{}, *rpcFailure) {
	var params addressParams
	if failure := decodeParams(raw, &params); failure != nil {
		return nil, failure
	}
	addr, failure := parseAddress("address", params.Address)
	if failure != nil {
		return nil, failure
	}
	mint, err := token.ReadMint(s.state, addr)
	if err != nil {
		return nil, failureFromError("failed to load mint", err)
	}
	return formatMint(addr, mint), nil
}
