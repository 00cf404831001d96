package http_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalytics "github.com/jhoicas/cargotrack-api/internal/application/analytics"
	"github.com/jhoicas/cargotrack-api/internal/application/auth"
	"github.com/jhoicas/cargotrack-api/internal/application/contract"
	"github.com/jhoicas/cargotrack-api/internal/application/dto"
	"github.com/jhoicas/cargotrack-api/internal/application/shipment"
	"github.com/jhoicas/cargotrack-api/internal/application/transaction"
	"github.com/jhoicas/cargotrack-api/internal/application/usecase"
	"github.com/jhoicas/cargotrack-api/internal/infrastructure/cache"
	"github.com/jhoicas/cargotrack-api/internal/infrastructure/events"
	"github.com/jhoicas/cargotrack-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/cargotrack-api/internal/infrastructure/pdf"
	"github.com/jhoicas/cargotrack-api/internal/infrastructure/storage"
	apphttp "github.com/jhoicas/cargotrack-api/internal/interfaces/http"
	"github.com/jhoicas/cargotrack-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Servidor de prueba sobre el almacén en memoria
// ──────────────────────────────────────────────────────────────────────────────

type testServer struct {
	app   *fiber.App
	store *memory.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	s := memory.New()
	log := logger.Nop()

	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	validator := shipment.NewValidator(s.Locations(), s.Vessels())
	writer := shipment.NewWriteVersionUseCase(s, events.NopPublisher{}, log)
	mirror := transaction.NewShipmentItemMirror(log)
	lineService := transaction.NewTransactionLineService(s, s.Products(), mirror)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:      auth.NewAuthUseCase(s.Users(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer}),
		UserUC:      usecase.NewUserUseCase(s.Users()),
		LocationUC:  usecase.NewLocationUseCase(s.Locations()),
		VesselUC:    usecase.NewVesselUseCase(s.Vessels()),
		ProductUC:   usecase.NewProductUseCase(s.Products()),
		PartyUC:     usecase.NewPartyUseCase(s.Parties()),
		ShipmentUC:  shipment.NewShipmentUseCase(s.Shipments(), s.Versions(), s.Items(), validator, writer, s, log),
		ReportUC:    shipment.NewReportUseCase(s.Shipments(), s.Versions(), s.Items(), s.Transactions(), infrapdf.NewMarotoReportGenerator()),
		LineService: lineService,
		TransactionUC: transaction.NewTransactionUseCase(
			s.Transactions(), s.Lines(), s.Parties(), s.Contracts(), s.Shipments(), s, mirror, lineService, log,
		),
		ContractUC: contract.NewContractUseCase(
			local, s, s.Contracts(), s.Blobs(), s.Transactions(), s.Shipments(), log,
		),
		DashboardUC: appanalytics.NewDashboardUseCase(s.Analytics(), cache.NewMemoryCache(), time.Minute, log),
		JWTSecret:   testJWTSecret,
	})
	return &testServer{app: app, store: s}
}

// do envía body como JSON (nil = sin cuerpo) con el rol indicado ("" = sin token).
func (ts *testServer) do(t *testing.T, method, path, role string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (ts *testServer) location(t *testing.T, name string) string {
	t.Helper()
	resp := ts.do(t, http.MethodPost, "/api/locations", "operator", map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[dto.LocationResponse](t, resp).ID
}

func (ts *testServer) createShipment(t *testing.T) (shipmentID, originID, destID string) {
	t.Helper()
	originID = ts.location(t, "Cartagena")
	destID = ts.location(t, "Rotterdam")
	resp := ts.do(t, http.MethodPost, "/api/shipments", "operator", map[string]any{
		"status":         "PLANNED",
		"origin_id":      originID,
		"destination_id": destID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	out := decode[dto.WriteVersionResponse](t, resp)
	require.Equal(t, 1, out.Version)
	return out.ShipmentID, originID, destID
}

// ──────────────────────────────────────────────────────────────────────────────
// Público
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_Health(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(t, http.MethodGet, "/health", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_RegistroYLogin(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": "Ops@Example.com", "password": "secreto123", "role": "operator",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	user := decode[dto.UserResponse](t, resp)
	assert.Equal(t, "ops@example.com", user.Email)
	assert.Equal(t, "operator", user.Role)

	resp = ts.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": "ops@example.com", "password": "secreto123",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "ops@example.com", "password": "incorrecta",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "ops@example.com", "password": "secreto123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	login := decode[dto.LoginResponse](t, resp)
	require.NotEmpty(t, login.Token)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	r2, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, r2.StatusCode)
	me := decode[dto.UserResponse](t, r2)
	assert.Equal(t, user.ID, me.ID)

	resp = ts.do(t, http.MethodGet, "/api/me", "viewer", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "el usuario del token no existe")
}

// ──────────────────────────────────────────────────────────────────────────────
// Roles
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_ViewerNoEscribe(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(t, http.MethodPost, "/api/locations", "viewer", map[string]any{"name": "Callao"})
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/locations", "viewer", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_BorradoDeVersionSoloAdmin(t *testing.T) {
	ts := newTestServer(t)
	id, _, _ := ts.createShipment(t)

	resp := ts.do(t, http.MethodDelete, "/api/shipments/"+id+"/versions/x", "operator", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRouter_SinToken(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(t, http.MethodGet, "/api/shipments", "", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Embarques
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_EscrituraDeVersionesConservaCampos(t *testing.T) {
	ts := newTestServer(t)
	id, originID, destID := ts.createShipment(t)

	resp := ts.do(t, http.MethodPatch, "/api/shipments/"+id, "operator", map[string]any{
		"status": "IN_TRANSIT",
		"eta":    "2025-03-20",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	w := decode[dto.WriteVersionResponse](t, resp)
	assert.Equal(t, 2, w.Version)
	assert.Equal(t, "IN_TRANSIT", w.Status)

	resp = ts.do(t, http.MethodGet, "/api/shipments/"+id, "viewer", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	detail := decode[dto.ShipmentDetailResponse](t, resp)

	assert.Equal(t, 2, detail.Shipment.Version)
	require.NotNil(t, detail.Shipment.LatestVersionID)
	assert.Equal(t, w.VersionID, *detail.Shipment.LatestVersionID)
	require.NotNil(t, detail.Shipment.OriginID)
	assert.Equal(t, originID, *detail.Shipment.OriginID, "origen omitido se conserva")
	require.NotNil(t, detail.Shipment.DestinationID)
	assert.Equal(t, destID, *detail.Shipment.DestinationID)
	require.NotNil(t, detail.Shipment.ETA)
	assert.Equal(t, "2025-03-20", *detail.Shipment.ETA)
	require.Len(t, detail.History, 2)
	require.NotNil(t, detail.History[0].ActorID)
	assert.Equal(t, testUserID, *detail.History[0].ActorID)
	require.NotNil(t, detail.History[0].Reason)
	assert.Equal(t, shipment.ReasonUpdated, *detail.History[0].Reason)
}

func TestRouter_ValidacionDeEmbarque(t *testing.T) {
	ts := newTestServer(t)
	loc := ts.location(t, "Cartagena")

	resp := ts.do(t, http.MethodPost, "/api/shipments", "operator", map[string]any{
		"status": "PLANNED", "origin_id": loc, "destination_id": loc,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "origen y destino iguales")
}

func TestRouter_EmbarqueInexistente(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(t, http.MethodGet, "/api/shipments/01HZZZZZZZZZZZZZZZZZZZZZZZ", "viewer", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_CuerpoInvalido(t *testing.T) {
	ts := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/shipments", bytes.NewBufferString("{no es json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, "operator"))
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_BorrarVersionActualReapunta(t *testing.T) {
	ts := newTestServer(t)
	id, _, _ := ts.createShipment(t)

	resp := ts.do(t, http.MethodPatch, "/api/shipments/"+id, "operator", map[string]any{"status": "ARRIVED"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	v2 := decode[dto.WriteVersionResponse](t, resp)

	resp = ts.do(t, http.MethodDelete, "/api/shipments/"+id+"/versions/"+v2.VersionID, "admin", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/shipments/"+id+"/history", "viewer", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	history := decode[[]dto.ShipmentVersionResponse](t, resp)
	require.Len(t, history, 1)

	resp = ts.do(t, http.MethodGet, "/api/shipments/"+id, "viewer", nil)
	detail := decode[dto.ShipmentDetailResponse](t, resp)
	assert.Equal(t, 1, detail.Shipment.Version)
	assert.Equal(t, "PLANNED", detail.Shipment.Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Transacciones, líneas e ítems espejo
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_LineasYEspejo(t *testing.T) {
	ts := newTestServer(t)
	id, _, _ := ts.createShipment(t)

	resp := ts.do(t, http.MethodPost, "/api/shipments/"+id+"/transactions", "operator", map[string]any{
		"type": "PURCHASE", "tx_date": time.Now().UTC().Format(dto.DateLayout),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tx := decode[dto.TransactionResponse](t, resp)
	require.NotNil(t, tx.ShipmentID)

	resp = ts.do(t, http.MethodPost, "/api/transactions/"+tx.ID+"/lines", "operator", map[string]any{
		"description": "Café verde", "quantity": "3", "unit_price": "2.50",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	line := decode[dto.TransactionLineResponse](t, resp)
	assert.Equal(t, "7.50", line.LineValue)
	assert.Equal(t, 1, line.LineNumber)

	resp = ts.do(t, http.MethodPost, "/api/transactions/"+tx.ID+"/lines", "operator", map[string]any{
		"description": "Cacao", "quantity": "0", "unit_price": "1",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, "cantidad 0 viola la invariante")

	resp = ts.do(t, http.MethodGet, "/api/shipments/"+id+"/items", "viewer", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := decode[[]dto.ShipmentItemResponse](t, resp)
	require.Len(t, items, 1)
	assert.Equal(t, line.ID, items[0].TransactionLineID)

	resp = ts.do(t, http.MethodGet, "/api/transactions/"+tx.ID, "viewer", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	detail := decode[dto.TransactionDetailResponse](t, resp)
	assert.Equal(t, "7.50", detail.Transaction.TotalValue)
	require.Len(t, detail.Lines, 1)

	resp = ts.do(t, http.MethodPut, "/api/transactions/"+tx.ID+"/shipment", "operator", map[string]any{"shipment_id": nil})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	unassigned := decode[dto.TransactionResponse](t, resp)
	assert.Nil(t, unassigned.ShipmentID)

	resp = ts.do(t, http.MethodGet, "/api/shipments/"+id+"/items", "viewer", nil)
	items = decode[[]dto.ShipmentItemResponse](t, resp)
	assert.Empty(t, items, "desasignar la transacción retira sus ítems")

	resp = ts.do(t, http.MethodPost, "/api/shipments/"+id+"/items/rebuild", "admin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rebuilt := decode[map[string]int](t, resp)
	assert.Equal(t, 0, rebuilt["items"])
}

func TestRouter_TransaccionConLineas(t *testing.T) {
	ts := newTestServer(t)
	id, _, _ := ts.createShipment(t)

	resp := ts.do(t, http.MethodPost, "/api/products", "operator", map[string]any{
		"name": "Cátodo de cobre", "sku": "CU-CATH-01", "material_code": "74031100",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	product := decode[dto.ProductResponse](t, resp)

	resp = ts.do(t, http.MethodPost, "/api/products", "operator", map[string]any{"name": "Otro", "sku": "cu-cath-01"})
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "SKU único sin distinguir mayúsculas")

	resp = ts.do(t, http.MethodPost, "/api/shipments/"+id+"/transactions", "operator", map[string]any{
		"type": "SALE", "tx_date": "2025-03-01",
		"lines": []map[string]any{{"description": "Cátodos", "quantity": "2", "unit_price": "10.00", "line_value": "1.00"}},
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "line_value no se acepta del cliente")

	resp = ts.do(t, http.MethodPost, "/api/shipments/"+id+"/transactions", "operator", map[string]any{
		"type": "SALE", "tx_date": "2025-03-01",
		"lines": []map[string]any{
			{"product_id": product.ID, "description": "Cátodos", "quantity": "2", "unit_price": "10.00"},
			{"description": "Flete", "quantity": "1", "unit_price": "5.25"},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tx := decode[dto.TransactionResponse](t, resp)
	assert.Equal(t, "25.25", tx.TotalValue)
	require.Len(t, tx.Lines, 2)
	assert.Equal(t, []int{1, 2}, []int{tx.Lines[0].LineNumber, tx.Lines[1].LineNumber})

	resp = ts.do(t, http.MethodGet, "/api/shipments/"+id+"/items", "viewer", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.ShipmentItemResponse](t, resp), 2)

	resp = ts.do(t, http.MethodGet, "/api/transactions/"+tx.ID, "viewer", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	detail := decode[dto.TransactionDetailResponse](t, resp)
	require.Len(t, detail.Lines, 2)
	require.NotNil(t, detail.Lines[0].ProductID)
	assert.Equal(t, product.ID, *detail.Lines[0].ProductID)

	resp = ts.do(t, http.MethodGet, "/api/products", "viewer", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[dto.ListResponse[dto.ProductResponse]](t, resp).Items, 1)
}

func TestRouter_Partes(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/api/parties", "operator", map[string]any{"name": "Naviera Sur", "type": "COMPANY"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	party := decode[dto.PartyResponse](t, resp)

	resp = ts.do(t, http.MethodPost, "/api/transactions", "operator", map[string]any{"type": "FREIGHT", "tx_date": "2025-03-01"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tx := decode[dto.TransactionResponse](t, resp)

	body := map[string]any{"party_id": party.ID, "role": "CARRIER"}
	resp = ts.do(t, http.MethodPost, "/api/transactions/"+tx.ID+"/parties", "operator", body)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/api/transactions/"+tx.ID+"/parties", "operator", body)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = ts.do(t, http.MethodDelete, "/api/transactions/"+tx.ID+"/parties/"+party.ID+"/CARRIER", "operator", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Contratos, reporte y analítica
// ──────────────────────────────────────────────────────────────────────────────

var samplePDF = []byte("%PDF-1.4\n% contrato de prueba\n%%EOF\n")

func TestRouter_ContratoBase64YDescarga(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(t, http.MethodPost, "/api/transactions", "operator", map[string]any{"type": "SALE", "tx_date": "2025-03-01"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tx := decode[dto.TransactionResponse](t, resp)

	resp = ts.do(t, http.MethodPost, "/api/transactions/"+tx.ID+"/contracts", "operator", map[string]any{
		"pdf_base64": "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(samplePDF),
		"filename":   "venta",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	c := decode[dto.ContractResponse](t, resp)
	assert.Equal(t, "venta.pdf", c.Filename)
	assert.Equal(t, int64(len(samplePDF)), c.Size)
	assert.Equal(t, storage.DriverLocal, c.Disk)

	resp = ts.do(t, http.MethodGet, "/api/contracts/"+c.ID+"/pdf", "viewer", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	got, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, samplePDF, got)

	resp = ts.do(t, http.MethodDelete, "/api/contracts/"+c.ID, "operator", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/contracts/"+c.ID, "viewer", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_ContratoMultipartRechazaNoPDF(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(t, http.MethodPost, "/api/transactions", "operator", map[string]any{"type": "SALE", "tx_date": "2025-03-01"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tx := decode[dto.TransactionResponse](t, resp)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("pdf", "foto.png")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("\x89PNG no es un pdf"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/transactions/"+tx.ID+"/contracts", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", tokenForRole(t, "operator"))
	r, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	defer r.Body.Close()
	assert.Equal(t, http.StatusBadRequest, r.StatusCode)
}

func TestRouter_ReportePDF(t *testing.T) {
	ts := newTestServer(t)
	id, _, _ := ts.createShipment(t)

	resp := ts.do(t, http.MethodGet, "/api/shipments/"+id+"/report.pdf", "viewer", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF-")))
}

func TestRouter_Dashboard(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/api/analytics/dashboard?days=7", "viewer", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.DashboardResponse](t, resp)
	assert.Equal(t, 7, out.Days)
	assert.Equal(t, "0.00", out.KPIs.TotalValue)

	resp = ts.do(t, http.MethodGet, "/api/analytics/dashboard?days=999", "viewer", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/analytics/dashboard?days=abc", "viewer", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
