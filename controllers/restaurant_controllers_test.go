package controllers_test

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/food-delivery/models"
)

type restaurantDetail struct {
	models.Restaurant
	Status struct {
		Open bool `json:"open"`
	} `json:"status"`
	Rating struct {
		Average *float64 `json:"average"`
		Count   int64    `json:"count"`
	} `json:"rating"`
}

func TestCategories(t *testing.T) {
	e := setup(t)
	_, admin := e.account("chef", models.RoleRestaurant)
	_, client := e.account("ana", models.RoleClient)

	w := e.do(http.MethodPost, "/categories", gin.H{"name": "Pizza"}, admin)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPost, "/categories", gin.H{"name": "Pizza"}, admin).Code)
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodPost, "/categories", gin.H{"name": "Sushi"}, client).Code)

	var list []models.Category
	decode(t, e.do(http.MethodGet, "/categories", nil, ""), &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Pizza", list[0].Name)

	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/categories/99", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/categories/abc", nil, "").Code)
}

func TestCreateRestaurant(t *testing.T) {
	e := setup(t)
	_, admin := e.account("chef", models.RoleRestaurant)
	_, client := e.account("ana", models.RoleClient)
	burgers := e.category("Burgers")

	body := gin.H{"category_id": burgers, "name": "Burger Place", "delivery_time": 30, "tax": 5.5}
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodPost, "/restaurants", body, client).Code)

	w := e.do(http.MethodPost, "/restaurants", gin.H{"category_id": 99, "name": "X", "delivery_time": 30}, admin)
	assert.Equal(t, "Category not found", decode(t, w, nil).Message)

	r := e.restaurant(admin, "Burger Place", burgers)
	assert.Equal(t, "5.50", r.Tax.StringFixed(2))
	require.Len(t, r.Hours, 7)
	for _, h := range r.Hours {
		assert.False(t, h.Open)
	}

	w = e.do(http.MethodPost, "/restaurants", body, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Restaurant already registered for this user", decode(t, w, nil).Message)

	var me restaurantDetail
	decode(t, e.do(http.MethodGet, "/restaurants/me", nil, admin), &me)
	assert.Equal(t, r.ID, me.ID)
	assert.False(t, me.Status.Open)
	assert.Nil(t, me.Rating.Average)
}

func TestUpdateRestaurantAndHours(t *testing.T) {
	e := setup(t)
	_, admin := e.account("chef", models.RoleRestaurant)
	r := e.restaurant(admin, "Burger Place", e.category("Burgers"))

	w := e.do(http.MethodPut, "/restaurants/me", gin.H{"category_id": r.CategoryID, "name": "Burger House", "delivery_time": 45, "tax": 0}, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.Restaurant
	decode(t, w, &updated)
	assert.Equal(t, "Burger House", updated.Name)
	assert.True(t, updated.Tax.IsZero())

	w = e.do(http.MethodPut, "/restaurants/me", gin.H{"category_id": r.CategoryID, "name": "X", "delivery_time": 45, "tax": -1}, admin)
	assert.Equal(t, "Tax cannot be negative", decode(t, w, nil).Message)

	w = e.setHours(admin, allDay()[:6])
	assert.Equal(t, http.StatusBadRequest, w.Code)

	week := allDay()
	week[3] = gin.H{"weekday": 3, "open": true, "opened_at": 1320, "closed_at": 1500}
	w = e.setHours(admin, week)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "opening hours cannot span midnight", decode(t, w, nil).Message)

	week[3] = gin.H{"weekday": 3, "open": true, "opened_at": 600, "closed_at": 600}
	assert.Equal(t, http.StatusBadRequest, e.setHours(admin, week).Code)

	w = e.setHours(admin, allDay())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var detail restaurantDetail
	decode(t, e.do(http.MethodGet, "/restaurants/"+fmt.Sprint(r.ID), nil, ""), &detail)
	assert.True(t, detail.Status.Open)
	require.Len(t, detail.Hours, 7)
	assert.Equal(t, 1440, detail.Hours[0].ClosedAt)

	var n int64
	e.db.Model(&models.Hour{}).Where("restaurant_id = ?", r.ID).Count(&n)
	assert.EqualValues(t, 7, n)
}

func TestListRestaurants(t *testing.T) {
	e := setup(t)
	burgers := e.category("Burgers")
	pizza := e.category("Pizza")
	for _, spec := range []struct {
		name     string
		category uint
	}{{"Burger Place", burgers}, {"Pizza Napoli", pizza}, {"Burger King of Curitiba", burgers}} {
		_, token := e.account(strings.ReplaceAll(strings.ToLower(spec.name), " ", ""), models.RoleRestaurant)
		e.restaurant(token, spec.name, spec.category)
	}

	var page struct {
		Items []restaurantDetail `json:"items"`
		Total int64              `json:"total"`
	}
	decode(t, e.do(http.MethodGet, "/restaurants?name=Burger", nil, ""), &page)
	assert.EqualValues(t, 2, page.Total)

	decode(t, e.do(http.MethodGet, "/restaurants?categoryId="+fmt.Sprint(pizza), nil, ""), &page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Pizza Napoli", page.Items[0].Name)
	assert.False(t, page.Items[0].Status.Open)

	decode(t, e.do(http.MethodGet, "/restaurants?perPage=2&page=2", nil, ""), &page)
	assert.EqualValues(t, 3, page.Total)
	assert.Len(t, page.Items, 1)

	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/restaurants?categoryId=x", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/restaurants/999", nil, "").Code)
}

func TestRestaurantImageUpload(t *testing.T) {
	e := setup(t)
	_, admin := e.account("chef", models.RoleRestaurant)
	e.restaurant(admin, "Burger Place", e.category("Burgers"))

	w := e.upload("/restaurants/me/image", "logo.png", []byte("png-bytes"), admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var r models.Restaurant
	decode(t, w, &r)
	require.NotNil(t, r.Image)
	assert.True(t, strings.HasPrefix(*r.Image, "http://api.test/uploads/restaurants/"))

	stored := filepath.Join(e.uploads, "restaurants", filepath.Base(*r.Image))
	data, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	// a second upload replaces the first file
	w = e.upload("/restaurants/me/image", "logo2.jpg", []byte("jpg-bytes"), admin)
	require.Equal(t, http.StatusOK, w.Code)
	_, err = os.Stat(stored)
	assert.True(t, os.IsNotExist(err))

	var replaced models.Restaurant
	decode(t, w, &replaced)
	require.NotNil(t, replaced.Image)
	data, err = os.ReadFile(filepath.Join(e.uploads, "restaurants", filepath.Base(*replaced.Image)))
	require.NoError(t, err)
	assert.Equal(t, "jpg-bytes", string(data))
	current := e.do(http.MethodGet, strings.TrimPrefix(*replaced.Image, "http://api.test"), nil, "")
	assert.Equal(t, http.StatusOK, current.Code)

	w = e.upload("/restaurants/me/image", "logo.exe", []byte("x"), admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
