package main

import (
	"context"
	"net/http"
)

func doAssetsList(ctx context.Context, cfg cliConfig, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "assets.list", map[string]any{}, out)
	}
	client := newAPIClient(cfg.Server)
	return client.request(ctx, http.MethodGet, "/api/assets", nil, out)
}

func doAssetsGet(ctx context.Context, cfg cliConfig, id uint, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "assets.get", map[string]any{"asset_id": id}, out)
	}
	client := newAPIClient(cfg.Server)
	return client.request(ctx, http.MethodGet, "/api/assets/"+uintToString(id), nil, out)
}

func doAssetsTimeline(ctx context.Context, cfg cliConfig, id uint, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "assets.timeline", map[string]any{"asset_id": id}, out)
	}
	client := newAPIClient(cfg.Server)
	return client.request(ctx, http.MethodGet, "/api/assets/"+uintToString(id)+"/timeline", nil, out)
}

func doAssetsIssue(ctx context.Context, cfg cliConfig, id, toOwner, performedBy uint, reason *string, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "assets.issue", map[string]any{"asset_id": id, "to_owner_user_id": toOwner, "performed_by": performedBy, "reason": reason}, out)
	}
	client := newAPIClient(cfg.Server)
	return client.request(ctx, http.MethodPost, "/api/assets/"+uintToString(id)+"/issue", map[string]any{"to_owner_user_id": toOwner, "performed_by": performedBy, "reason": reason}, out)
}

func doAssetsReturn(ctx context.Context, cfg cliConfig, id, toLocation, performedBy uint, reason *string, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "assets.return", map[string]any{"asset_id": id, "to_location_id": toLocation, "performed_by": performedBy, "reason": reason}, out)
	}
	client := newAPIClient(cfg.Server)
	return client.request(ctx, http.MethodPost, "/api/assets/"+uintToString(id)+"/return", map[string]any{"to_location_id": toLocation, "performed_by": performedBy, "reason": reason}, out)
}

func doAssetsDispose(ctx context.Context, cfg cliConfig, id, performedBy uint, reason string, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "assets.dispose", map[string]any{"asset_id": id, "performed_by": performedBy, "reason": reason}, out)
	}
	client := newAPIClient(cfg.Server)
	return client.request(ctx, http.MethodPost, "/api/assets/"+uintToString(id)+"/dispose", map[string]any{"performed_by": performedBy, "reason": reason}, out)
}

func doReceive(ctx context.Context, cfg cliConfig, lineID uint, qty int, locationID, performedBy uint, referenceDoc *string, out any) error {
	payload := map[string]any{
		"po_line_id":    lineID,
		"qty_received":  qty,
		"location_id":   locationID,
		"performed_by":  performedBy,
		"reference_doc": referenceDoc,
	}
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "receive", payload, out)
	}
	client := newAPIClient(cfg.Server)
	return client.request(ctx, http.MethodPost, "/api/receive", payload, out)
}

func doPOList(ctx context.Context, cfg cliConfig, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "po.list", map[string]any{}, out)
	}
	client := newAPIClient(cfg.Server)
	return client.request(ctx, http.MethodGet, "/api/pos", nil, out)
}

func doPOGet(ctx context.Context, cfg cliConfig, id uint, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "po.get", map[string]any{"po_id": id}, out)
	}
	client := newAPIClient(cfg.Server)
	return client.request(ctx, http.MethodGet, "/api/pos/"+uintToString(id), nil, out)
}

func doPOLines(ctx context.Context, cfg cliConfig, id uint, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "po.lines", map[string]any{"po_id": id}, out)
	}
	client := newAPIClient(cfg.Server)
	return client.request(ctx, http.MethodGet, "/api/pos/"+uintToString(id)+"/lines", nil, out)
}

func doPOCreate(ctx context.Context, cfg cliConfig, payload map[string]any, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "po.create", payload, out)
	}
	client := newAPIClient(cfg.Server)
	return client.request(ctx, http.MethodPost, "/api/pos", payload, out)
}

func doPOAddLine(ctx context.Context, cfg cliConfig, poID uint, payload map[string]any, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		rpcPayload := map[string]any{"po_id": poID}
		for k, v := range payload {
			rpcPayload[k] = v
		}
		return client.call(ctx, "po.addline", rpcPayload, out)
	}
	client := newAPIClient(cfg.Server)
	return client.request(ctx, http.MethodPost, "/api/pos/"+uintToString(poID)+"/lines", payload, out)
}

func doUsersList(ctx context.Context, cfg cliConfig, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "masters.user.list", map[string]any{}, out)
	}
	client := newAPIClient(cfg.Server)
	return client.request(ctx, http.MethodGet, "/api/masters/users", nil, out)
}

func doUsersCreate(ctx context.Context, cfg cliConfig, displayName, role string, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "masters.user.create", map[string]any{"display_name": displayName, "role": role}, out)
	}
	client := newAPIClient(cfg.Server)
	return client.request(ctx, http.MethodPost, "/api/masters/users", map[string]any{"display_name": displayName, "role": role}, out)
}

func doLocationsList(ctx context.Context, cfg cliConfig, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "masters.location.list", map[string]any{}, out)
	}
	client := newAPIClient(cfg.Server)
	return client.request(ctx, http.MethodGet, "/api/masters/locations", nil, out)
}

func doLocationsCreate(ctx context.Context, cfg cliConfig, name string, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "masters.location.create", map[string]any{"name": name}, out)
	}
	client := newAPIClient(cfg.Server)
	return client.request(ctx, http.MethodPost, "/api/masters/locations", map[string]any{"name": name}, out)
}
