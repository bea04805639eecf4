package rpcjson

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/saehwan/assetledger/internal/application"
	"github.com/saehwan/assetledger/internal/domain"
)

type Server struct {
	service  *application.LedgerService
	listener net.Listener
	path     string
}

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      any             `json:"id"`
}

type response struct {
	JSONRPC string    `json:"jsonrpc"`
	Result  any       `json:"result,omitempty"`
	Error   *rpcError `json:"error,omitempty"`
	ID      any       `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func Start(path string, service *application.LedgerService) (*Server, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("rpc socket path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	_ = os.Remove(path)
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	if err := os.Chmod(path, 0o600); err != nil {
		_ = ln.Close()
		_ = os.Remove(path)
		return nil, err
	}

	s := &Server{service: service, listener: ln, path: path}
	go s.serve()
	return s, nil
}

func (s *Server) serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go s.handleConn(conn)
	}
}

func (s *Server) Close() error {
	err := s.listener.Close()
	_ = os.Remove(s.path)
	return err
}

func (s *Server) handleConn(conn net.Conn) {
	defer func() { _ = conn.Close() }()
	dec := json.NewDecoder(conn)
	enc := json.NewEncoder(conn)

	for {
		var req request
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			_ = enc.Encode(response{JSONRPC: "2.0", Error: &rpcError{Code: -32700, Message: "parse error"}, ID: nil})
			return
		}

		resp := s.dispatch(context.Background(), req)
		if err := enc.Encode(resp); err != nil {
			return
		}
	}
}

func (s *Server) dispatch(ctx context.Context, req request) response {
	if req.JSONRPC != "2.0" || strings.TrimSpace(req.Method) == "" {
		return response{JSONRPC: "2.0", Error: &rpcError{Code: -32600, Message: "invalid request"}, ID: req.ID}
	}

	switch req.Method {
	case "assets.list":
		out, err := s.service.ListAssets(ctx)
		if err != nil {
			return internalError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: out, ID: req.ID}
	case "assets.get":
		var p struct {
			AssetID uint `json:"asset_id"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.service.GetAsset(ctx, p.AssetID)
		if err != nil {
			return appError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: out, ID: req.ID}
	case "assets.timeline":
		var p struct {
			AssetID uint `json:"asset_id"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.service.ListTimeline(ctx, p.AssetID)
		if err != nil {
			return appError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: out, ID: req.ID}
	case "assets.issue":
		var p struct {
			AssetID       uint    `json:"asset_id"`
			ToOwnerUserID uint    `json:"to_owner_user_id"`
			PerformedBy   uint    `json:"performed_by"`
			Reason        *string `json:"reason"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.service.Issue(ctx, p.AssetID, p.ToOwnerUserID, p.PerformedBy, p.Reason)
		if err != nil {
			return appError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: out, ID: req.ID}
	case "assets.return":
		var p struct {
			AssetID      uint    `json:"asset_id"`
			ToLocationID uint    `json:"to_location_id"`
			PerformedBy  uint    `json:"performed_by"`
			Reason       *string `json:"reason"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.service.Return(ctx, p.AssetID, p.ToLocationID, p.PerformedBy, p.Reason)
		if err != nil {
			return appError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: out, ID: req.ID}
	case "assets.dispose":
		var p struct {
			AssetID     uint   `json:"asset_id"`
			PerformedBy uint   `json:"performed_by"`
			Reason      string `json:"reason"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.service.Dispose(ctx, p.AssetID, p.PerformedBy, p.Reason)
		if err != nil {
			return appError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: out, ID: req.ID}
	case "receive":
		var p struct {
			POLineID     uint    `json:"po_line_id"`
			QtyReceived  int     `json:"qty_received"`
			LocationID   uint    `json:"location_id"`
			PerformedBy  uint    `json:"performed_by"`
			ReferenceDoc *string `json:"reference_doc"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.service.Receive(ctx, p.POLineID, p.QtyReceived, p.LocationID, p.PerformedBy, p.ReferenceDoc)
		if err != nil {
			return appError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: out, ID: req.ID}
	case "po.list":
		out, err := s.service.ListPurchaseOrders(ctx)
		if err != nil {
			return internalError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: out, ID: req.ID}
	case "po.get":
		var p struct {
			POID uint `json:"po_id"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.service.GetPurchaseOrder(ctx, p.POID)
		if err != nil {
			return appError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: out, ID: req.ID}
	case "po.lines":
		var p struct {
			POID uint `json:"po_id"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.service.ListPurchaseOrderLines(ctx, p.POID)
		if err != nil {
			return appError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: out, ID: req.ID}
	case "po.create":
		var p struct {
			VendorName     *string   `json:"vendor_name"`
			PONumber       *string   `json:"po_number"`
			RequestedByID  uint      `json:"requested_by_id"`
			PurchasedAt    time.Time `json:"purchased_at"`
			PurchaseReason string    `json:"purchase_reason"`
			CostCenter     *string   `json:"cost_center"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.service.CreatePurchaseOrder(ctx, domain.PurchaseOrder{
			VendorName:     p.VendorName,
			PONumber:       p.PONumber,
			RequestedByID:  p.RequestedByID,
			PurchasedAt:    p.PurchasedAt,
			PurchaseReason: p.PurchaseReason,
			CostCenter:     p.CostCenter,
		})
		if err != nil {
			return appError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: out, ID: req.ID}
	case "po.addline":
		var p struct {
			POID         uint     `json:"po_id"`
			ItemCategory string   `json:"item_category"`
			ModelName    *string  `json:"model_name"`
			Description  *string  `json:"description"`
			QtyOrdered   int      `json:"qty_ordered"`
			UnitPrice    *float64 `json:"unit_price"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.service.AddPurchaseOrderLine(ctx, domain.PurchaseOrderLine{
			POID:         p.POID,
			ItemCategory: p.ItemCategory,
			ModelName:    p.ModelName,
			Description:  p.Description,
			QtyOrdered:   p.QtyOrdered,
			UnitPrice:    p.UnitPrice,
		})
		if err != nil {
			return appError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: out, ID: req.ID}
	case "masters.user.list":
		out, err := s.service.ListUsers(ctx)
		if err != nil {
			return internalError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: out, ID: req.ID}
	case "masters.user.create":
		var p struct {
			DisplayName string `json:"display_name"`
			Role        string `json:"role"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.service.CreateUser(ctx, p.DisplayName, domain.Role(p.Role))
		if err != nil {
			return appError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: out, ID: req.ID}
	case "masters.location.list":
		out, err := s.service.ListLocations(ctx)
		if err != nil {
			return internalError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: out, ID: req.ID}
	case "masters.location.create":
		var p struct {
			Name string `json:"name"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.service.CreateLocation(ctx, p.Name)
		if err != nil {
			return appError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: out, ID: req.ID}
	default:
		return response{JSONRPC: "2.0", Error: &rpcError{Code: -32601, Message: "method not found"}, ID: req.ID}
	}
}

func decodeParams(raw json.RawMessage, out any) bool {
	if len(raw) == 0 {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

func invalidParams(id any) response {
	return response{JSONRPC: "2.0", Error: &rpcError{Code: -32602, Message: "invalid params"}, ID: id}
}

// appError carries the error kind in the code so a thin client can tell a
// miss from an illegal transition without string matching.
func appError(id any, err error) response {
	code := 40000
	switch {
	case errors.Is(err, domain.ErrNotFound):
		code = 40401
	case errors.Is(err, domain.ErrInvalidTransition):
		code = 40901
	case errors.Is(err, domain.ErrValidation):
		code = 40001
	}
	return response{JSONRPC: "2.0", Error: &rpcError{Code: code, Message: err.Error()}, ID: id}
}

func internalError(id any, err error) response {
	return response{JSONRPC: "2.0", Error: &rpcError{Code: 50000, Message: fmt.Sprintf("internal error: %v", err)}, ID: id}
}
