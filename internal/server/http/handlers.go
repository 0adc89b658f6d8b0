package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fruitbid/server/internal/model"
	"github.com/fruitbid/server/internal/service"
)

// Server wires services into HTTP handlers.
type Server struct {
	auth    service.AuthService
	catalog service.CatalogService
	bids    service.BidService
	billing service.BillingService
	report  service.ReportService
	signKey []byte
	log     *zap.Logger
	now     func() time.Time
}

// New constructs the HTTP server with injected services.
func New(
	auth service.AuthService,
	catalog service.CatalogService,
	bids service.BidService,
	billing service.BillingService,
	report service.ReportService,
	signKey []byte,
	log *zap.Logger,
) *Server {
	return &Server{
		auth:    auth,
		catalog: catalog,
		bids:    bids,
		billing: billing,
		report:  report,
		signKey: signKey,
		log:     log,
		now:     time.Now,
	}
}

// --- Auth ---

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identifier string `json:"identifier"`
		Kind       string `json:"kind"`
		Address    string `json:"address"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	receipt, err := s.auth.RequestChallenge(r.Context(), req.Identifier, model.ContactKind(req.Kind), req.Address)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp := map[string]any{"delivered": receipt.Delivered}
	if !receipt.Delivered {
		resp["code"] = receipt.Code
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identifier string `json:"identifier"`
		Code       string `json:"code"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	u, err := s.auth.VerifyAndRegister(r.Context(), req.Identifier, req.Code)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"user_id":    u.ID.String(),
		"identifier": u.Identifier,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identifier string `json:"identifier"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	tok, u, err := s.auth.Login(r.Context(), req.Identifier)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":      tok.AccessToken,
		"expires_at": tok.ExpiresAt,
		"user_id":    u.ID.String(),
	})
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	tok, err := s.auth.AdminLogin(r.Context(), req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":      tok.AccessToken,
		"expires_at": tok.ExpiresAt,
	})
}

// --- Cycle ---

// handleCycle reports the window state. Observing a closed window triggers
// the billing and lucky-dip passes; settle failures are logged and do not
// hide the status from the caller.
func (s *Server) handleCycle(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	if err := s.billing.Settle(r.Context(), now); err != nil {
		s.log.Error("settle failed", zap.Error(err))
	}
	st, err := s.bids.Status(r.Context(), now)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"open":              st.Open,
		"bid_start":         st.BidStart,
		"days_elapsed":      st.DaysElapsed,
		"remaining_seconds": int64(st.Remaining.Seconds()),
		"delivery_date":     st.DeliveryDate.Format("2006-01-02"),
	})
}

func (s *Server) handleResetCycle(w http.ResponseWriter, r *http.Request) {
	if err := s.billing.ResetCycle(r.Context(), s.now()); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cycle reset"})
}

// --- Catalog ---

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.catalog.Items(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	type itemResp struct {
		Name        string          `json:"name"`
		MinBid      decimal.Decimal `json:"min_bid"`
		MarketCap   decimal.Decimal `json:"market_cap"`
		BillingRate decimal.Decimal `json:"billing_rate"`
	}
	out := make([]itemResp, 0, len(items))
	for _, it := range items {
		out = append(out, itemResp{Name: it.Name, MinBid: it.MinBid, MarketCap: it.MarketCap, BillingRate: it.BillingRate})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string          `json:"name"`
		MinBid    decimal.Decimal `json:"min_bid"`
		MarketCap decimal.Decimal `json:"market_cap"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.catalog.AddItem(r.Context(), req.Name, req.MinBid, req.MarketCap); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "item added"})
}

func (s *Server) handleUpdateMinBid(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MinBid decimal.Decimal `json:"min_bid"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	name := chi.URLParam(r, "name")
	if err := s.catalog.UpdateMinBid(r.Context(), name, req.MinBid); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "minimum bid updated"})
}

func (s *Server) handleSetDiscount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Percent decimal.Decimal `json:"percent"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.catalog.SetDiscount(r.Context(), req.Percent); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "discount updated"})
}

func (s *Server) handleListNutrition(w http.ResponseWriter, r *http.Request) {
	rows, err := s.catalog.Nutrition(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	type nutritionResp struct {
		Item      string  `json:"item"`
		Calories  float64 `json:"calories"`
		Fiber     float64 `json:"fiber"`
		VitC      float64 `json:"vit_c"`
		Potassium float64 `json:"potassium"`
		Notes     string  `json:"notes"`
	}
	out := make([]nutritionResp, 0, len(rows))
	for _, n := range rows {
		out = append(out, nutritionResp{
			Item:      n.ItemName,
			Calories:  n.Calories,
			Fiber:     n.Fiber,
			VitC:      n.VitC,
			Potassium: n.Potassium,
			Notes:     n.Notes,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpsertNutrition(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Calories  float64 `json:"calories"`
		Fiber     float64 `json:"fiber"`
		VitC      float64 `json:"vit_c"`
		Potassium float64 `json:"potassium"`
		Notes     string  `json:"notes"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	n := model.Nutrition{
		ItemName:  chi.URLParam(r, "name"),
		Calories:  req.Calories,
		Fiber:     req.Fiber,
		VitC:      req.VitC,
		Potassium: req.Potassium,
		Notes:     req.Notes,
	}
	if err := s.catalog.UpsertNutrition(r.Context(), n); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "nutrition updated"})
}

// --- Bids ---

func (s *Server) handlePlaceBid(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())
	var req struct {
		Item   string          `json:"item"`
		Amount decimal.Decimal `json:"amount"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.bids.PlaceBid(r.Context(), userID, req.Item, req.Amount, s.now()); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "bid confirmed"})
}

func (s *Server) handleMyBids(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())
	bids, err := s.bids.UserBids(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	type bidResp struct {
		Item     string          `json:"item"`
		Amount   decimal.Decimal `json:"amount"`
		PlacedAt time.Time       `json:"placed_at"`
	}
	out := make([]bidResp, 0, len(bids))
	for _, b := range bids {
		out = append(out, bidResp{Item: b.ItemName, Amount: b.Amount, PlacedAt: b.PlacedAt})
	}
	writeJSON(w, http.StatusOK, out)
}

// --- Report ---

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	snap, err := s.report.Snapshot(r.Context(), s.now())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
