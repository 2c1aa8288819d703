package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/dormhub/backend/internal/domain/dormitory"
	"github.com/dormhub/backend/internal/domain/tenancy"
	"github.com/dormhub/backend/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// envelope mirrors dto.Response with the payload left raw so each test
// can decode it into the type it expects.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

// RouteRegistrar matches the handlers' route registration hook
type routeRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

func newTestRouter(registrars ...routeRegistrar) *gin.Engine {
	engine := gin.New()
	api := engine.Group("/api/v1")
	for _, r := range registrars {
		r.RegisterRoutes(api)
	}
	return engine
}

func performJSON(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

// domainFixture is a consistent dormitory, room and tenant the
// handler tests wire into mock repositories.
type domainFixture struct {
	dorm   *dormitory.Dormitory
	room   *dormitory.Room
	tenant *tenancy.Tenant
}

func newDomainFixture(t *testing.T) *domainFixture {
	t.Helper()

	config := dormitory.DormitoryConfig{
		RoomTypes: map[string]dormitory.RoomTypeConfig{
			"standard": {Name: "Standard", BasePrice: decimal.NewFromInt(3000)},
		},
		FloorRates: map[int]decimal.Decimal{3: decimal.NewFromInt(-200)},
		ServiceItems: map[string]dormitory.ServiceItemConfig{
			"parking": {Name: "Parking", Amount: decimal.NewFromInt(100)},
		},
		Utilities: dormitory.UtilityRates{
			WaterPerPerson:   decimal.NewFromInt(50),
			ElectricUnitRate: decimal.NewFromInt(7),
		},
		BillingCycle: dormitory.BillingCycle{
			GracePeriodDays:     7,
			RequireMeterReading: true,
		},
	}
	dorm, err := dormitory.NewDormitory("Sunrise Dorm", "1 Main Rd", config)
	require.NoError(t, err)

	room, err := dormitory.NewRoom(dorm.ID, "301", 3, "standard")
	require.NoError(t, err)
	room.SetServiceItems([]string{"parking"})

	tenant, err := tenancy.NewTenant(dorm.ID, room.ID, "Somchai", 2)
	require.NoError(t, err)
	tenant.RecordElectricityUsage(100, 140)
	require.NoError(t, room.AssignTenant(tenant.ID))
	room.ClearDomainEvents()
	tenant.ClearDomainEvents()

	return &domainFixture{dorm: dorm, room: room, tenant: tenant}
}

func assertErrorCode(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, rec.Code)
	env := decodeEnvelope(t, rec)
	require.False(t, env.Success)
	require.NotNil(t, env.Error)
	require.Equal(t, code, env.Error.Code)
}
