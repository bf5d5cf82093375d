package controllers_test

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/food-delivery/models"
)

func TestProducts(t *testing.T) {
	m := newMarketplace(t)
	_, otherAdmin := m.account("rival", models.RoleRestaurant)
	m.testEnv.restaurant(otherAdmin, "Rival Burgers", m.restaurant.CategoryID)

	w := m.do(http.MethodPost, "/products", gin.H{"name": "Free", "price": 0}, m.adminToken)
	assert.Equal(t, "Price must be greater than zero", decode(t, w, nil).Message)
	assert.Equal(t, http.StatusForbidden, m.do(http.MethodPost, "/products", gin.H{"name": "X", "price": 1}, m.clientToken).Code)

	path := fmt.Sprintf("/products/%d", m.burger.ID)
	w = m.do(http.MethodPut, path, gin.H{"name": "Double Burger", "price": 25}, m.adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var p models.Product
	decode(t, w, &p)
	assert.Equal(t, "25.00", p.Price.StringFixed(2))

	// another restaurant cannot touch it
	w = m.do(http.MethodPut, path, gin.H{"name": "Stolen", "price": 1}, otherAdmin)
	assert.Equal(t, "Product not found", decode(t, w, nil).Message)
	assert.Equal(t, http.StatusBadRequest, m.do(http.MethodDelete, path, nil, otherAdmin).Code)

	require.Equal(t, http.StatusOK, m.do(http.MethodDelete, path, nil, m.adminToken).Code)

	var products []models.Product
	decode(t, m.do(http.MethodGet, fmt.Sprintf("/restaurants/%d/products", m.restaurant.ID), nil, ""), &products)
	require.Len(t, products, 1)
	assert.Equal(t, "Fries", products[0].Name)

	var deleted models.Product
	require.NoError(t, m.db.Unscoped().First(&deleted, m.burger.ID).Error)
	assert.True(t, deleted.DeletedAt.Valid)

	w = m.upload(fmt.Sprintf("/products/%d/image", m.fries.ID), "fries.webp", []byte("img"), m.adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &p)
	require.NotNil(t, p.Image)
}

func TestProductImageReplace(t *testing.T) {
	m := newMarketplace(t)
	path := fmt.Sprintf("/products/%d/image", m.fries.ID)

	var first, second models.Product
	decode(t, m.upload(path, "a.png", []byte("first"), m.adminToken), &first)
	require.NotNil(t, first.Image)
	decode(t, m.upload(path, "b.png", []byte("second"), m.adminToken), &second)
	require.NotNil(t, second.Image)

	_, err := os.Stat(filepath.Join(m.uploads, "products", filepath.Base(*first.Image)))
	assert.True(t, os.IsNotExist(err), "superseded image should be removed")
	data, err := os.ReadFile(filepath.Join(m.uploads, "products", filepath.Base(*second.Image)))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	var stored models.Product
	require.NoError(t, m.db.First(&stored, m.fries.ID).Error)
	assert.Equal(t, *second.Image, *stored.Image)
}

func TestAddresses(t *testing.T) {
	m := newMarketplace(t)
	_, bia := m.account("bia", models.RoleClient)

	assert.Equal(t, http.StatusForbidden, m.do(http.MethodGet, "/addresses", nil, m.adminToken).Code)

	bad := addressBody()
	bad["state"] = "Parana"
	assert.Equal(t, http.StatusBadRequest, m.do(http.MethodPost, "/addresses", bad, m.clientToken).Code)

	path := fmt.Sprintf("/addresses/%d", m.address.ID)
	body := addressBody()
	body["number"] = "100"
	w := m.do(http.MethodPut, path, body, m.clientToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var a models.Address
	decode(t, w, &a)
	assert.Equal(t, "100", a.Number)

	w = m.do(http.MethodPut, path, body, bia)
	assert.Equal(t, "Address not found", decode(t, w, nil).Message)

	var list []models.Address
	decode(t, m.do(http.MethodGet, "/addresses", nil, bia), &list)
	assert.Empty(t, list)

	require.Equal(t, http.StatusOK, m.do(http.MethodDelete, path, nil, m.clientToken).Code)
	decode(t, m.do(http.MethodGet, "/addresses", nil, m.clientToken), &list)
	assert.Empty(t, list)
}

func TestFavorites(t *testing.T) {
	m := newMarketplace(t)
	body := gin.H{"restaurant_id": m.restaurant.ID}

	require.Equal(t, http.StatusCreated, m.do(http.MethodPost, "/favorites", body, m.clientToken).Code)
	w := m.do(http.MethodPost, "/favorites", body, m.clientToken)
	assert.Equal(t, "Restaurant already in favorites", decode(t, w, nil).Message)
	w = m.do(http.MethodPost, "/favorites", gin.H{"restaurant_id": 999}, m.clientToken)
	assert.Equal(t, "Restaurant not found", decode(t, w, nil).Message)

	var favorites []models.Favorite
	decode(t, m.do(http.MethodGet, "/favorites", nil, m.clientToken), &favorites)
	require.Len(t, favorites, 1)
	require.NotNil(t, favorites[0].Restaurant)
	assert.Equal(t, "Burger Place", favorites[0].Restaurant.Name)

	path := fmt.Sprintf("/favorites/%d", m.restaurant.ID)
	require.Equal(t, http.StatusOK, m.do(http.MethodDelete, path, nil, m.clientToken).Code)
	w = m.do(http.MethodDelete, path, nil, m.clientToken)
	assert.Equal(t, "Restaurant is not in favorites", decode(t, w, nil).Message)
}
