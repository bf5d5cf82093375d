package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yeremiapane/food-delivery/controllers"
	"github.com/yeremiapane/food-delivery/database/dbtest"
	"github.com/yeremiapane/food-delivery/events"
	"github.com/yeremiapane/food-delivery/events/eventstest"
	"github.com/yeremiapane/food-delivery/kds"
	"github.com/yeremiapane/food-delivery/models"
	"github.com/yeremiapane/food-delivery/router"
	"github.com/yeremiapane/food-delivery/storage"
	"github.com/yeremiapane/food-delivery/tokenstore"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testEnv struct {
	t       *testing.T
	db      *gorm.DB
	r       *gin.Engine
	events  *eventstest.Recorder
	hub     *kds.Hub
	revoker *tokenstore.Memory
	uploads string
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	db := dbtest.Open(t)
	dir := t.TempDir()
	store, err := storage.NewLocalStore(dir, "http://api.test")
	require.NoError(t, err)

	e := &testEnv{t: t, db: db, events: &eventstest.Recorder{}, hub: kds.NewHub(), revoker: tokenstore.NewMemory(), uploads: dir}
	e.r = router.SetupRouter(router.Deps{
		DB:         db,
		Revoker:    e.revoker,
		Store:      store,
		Publisher:  events.Multi{e.hub, e.events},
		Hub:        e.hub,
		Cookie:     controllers.CookieConfig{Name: "token"},
		UploadDir:  dir,
		LoginRate:  100,
		LoginBurst: 100,
	})
	return e
}

func (e *testEnv) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

// do sends body as JSON with token as a Bearer header when set.
func (e *testEnv) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	e.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(e.t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.serve(req)
}

func (e *testEnv) upload(path, filename string, content []byte, token string) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", filename)
	require.NoError(e.t, err)
	_, err = fw.Write(content)
	require.NoError(e.t, err)
	require.NoError(e.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return e.serve(req)
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data), string(env.Data))
	}
	return env
}

func (e *testEnv) register(name, email, role string) models.User {
	e.t.Helper()
	w := e.do(http.MethodPost, "/user", gin.H{"name": name, "email": email, "password": "secret123", "role": role}, "")
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	var u models.User
	decode(e.t, w, &u)
	return u
}

func (e *testEnv) login(email string) string {
	e.t.Helper()
	w := e.do(http.MethodPost, "/session", gin.H{"email": email, "password": "secret123"}, "")
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	var out struct {
		Token string `json:"token"`
	}
	decode(e.t, w, &out)
	require.NotEmpty(e.t, out.Token)
	return out.Token
}

// account registers and logs in, returning the user and its token.
func (e *testEnv) account(name, role string) (models.User, string) {
	email := fmt.Sprintf("%s@delivery.test", name)
	u := e.register(name, email, role)
	return u, e.login(email)
}

func (e *testEnv) category(name string) uint {
	e.t.Helper()
	c := models.Category{Name: name}
	require.NoError(e.t, e.db.Create(&c).Error)
	return c.ID
}

// allDay keeps every weekday open for the full day.
func allDay() []gin.H {
	week := make([]gin.H, 0, 7)
	for d := 0; d < 7; d++ {
		week = append(week, gin.H{"weekday": d, "open": true, "opened_at": 0, "closed_at": 1440})
	}
	return week
}

func closedWeek() []gin.H {
	week := make([]gin.H, 0, 7)
	for d := 0; d < 7; d++ {
		week = append(week, gin.H{"weekday": d, "open": false, "opened_at": 0, "closed_at": 0})
	}
	return week
}

func (e *testEnv) restaurant(token, name string, categoryID uint) models.Restaurant {
	e.t.Helper()
	w := e.do(http.MethodPost, "/restaurants", gin.H{
		"category_id":   categoryID,
		"name":          name,
		"description":   "Smash burgers",
		"delivery_time": 30,
		"tax":           5.5,
	}, token)
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	var r models.Restaurant
	decode(e.t, w, &r)
	return r
}

func (e *testEnv) setHours(token string, week []gin.H) *httptest.ResponseRecorder {
	return e.do(http.MethodPut, "/restaurants/me/hours", gin.H{"hours": week}, token)
}

func (e *testEnv) product(token, name string, price float64) models.Product {
	e.t.Helper()
	w := e.do(http.MethodPost, "/products", gin.H{"name": name, "price": price}, token)
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	var p models.Product
	decode(e.t, w, &p)
	return p
}

func addressBody() gin.H {
	return gin.H{
		"street":   "Rua das Flores",
		"number":   "42",
		"district": "Centro",
		"city":     "Curitiba",
		"state":    "PR",
		"zip_code": "80000-000",
	}
}

func (e *testEnv) address(token string) models.Address {
	e.t.Helper()
	w := e.do(http.MethodPost, "/addresses", addressBody(), token)
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	var a models.Address
	decode(e.t, w, &a)
	return a
}

// marketplace is an open restaurant with two products and a client with an
// address.
type marketplace struct {
	*testEnv
	adminToken  string
	clientToken string
	client      models.User
	restaurant  models.Restaurant
	burger      models.Product
	fries       models.Product
	address     models.Address
}

func newMarketplace(t *testing.T) *marketplace {
	e := setup(t)
	m := &marketplace{testEnv: e}
	_, m.adminToken = e.account("chef", models.RoleRestaurant)
	m.client, m.clientToken = e.account("ana", models.RoleClient)
	m.restaurant = e.restaurant(m.adminToken, "Burger Place", e.category("Burgers"))
	require.Equal(t, http.StatusOK, e.setHours(m.adminToken, allDay()).Code)
	m.burger = e.product(m.adminToken, "Burger", 20.25)
	m.fries = e.product(m.adminToken, "Fries", 8.5)
	m.address = e.address(m.clientToken)
	return m
}

func (m *marketplace) order() models.Order {
	m.t.Helper()
	w := m.do(http.MethodPost, "/orders", gin.H{
		"restaurant_id":  m.restaurant.ID,
		"address_id":     m.address.ID,
		"payment_method": "PIX",
		"items": []gin.H{
			{"product_id": m.burger.ID, "quantity": 2},
			{"product_id": m.fries.ID, "quantity": 1, "observation": "no salt"},
		},
	}, m.clientToken)
	require.Equal(m.t, http.StatusCreated, w.Code, w.Body.String())
	var o models.Order
	decode(m.t, w, &o)
	return o
}
