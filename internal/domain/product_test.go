package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleProducts() []Product {
	return []Product{
		{ID: "p1", Title: "Knit Cardigan", Category: "tops", SavedBy: []string{"ua"}},
		{ID: "p2", Title: "Pleated Skirt", Category: "bottoms", SavedBy: []string{"ub"}},
		{ID: "p3", Title: "Canvas Tote", Category: "bags", SavedBy: []string{"ua", "ub"}},
		{ID: "p4", Title: "Beret", Category: "tops", SavedBy: []string{"ub", "uc"}},
	}
}

func TestBuildSharedWishlistGroupsByCategory(t *testing.T) {
	view := BuildSharedWishlist(sampleProducts(), []string{"ua", "ub"})

	assert.Len(t, view.Items, 4)
	assert.Len(t, view.ByCategory["tops"], 2)
	assert.Len(t, view.ByCategory["bottoms"], 1)
	assert.Len(t, view.ByCategory["bags"], 1)
}

func TestBuildSharedWishlistGroupsByParticipant(t *testing.T) {
	view := BuildSharedWishlist(sampleProducts(), []string{"ua", "ub"})

	assert.Len(t, view.ByParticipant["ua"], 2)  // p1, p3
	assert.Len(t, view.ByParticipant["ub"], 3)  // p2, p3, p4
	assert.NotContains(t, view.ByParticipant, "uc") // not a participant
}

func TestBuildSharedWishlistSharedSaveAppearsUnderBoth(t *testing.T) {
	view := BuildSharedWishlist(sampleProducts(), []string{"ua", "ub"})

	var uaHasTote, ubHasTote bool
	for _, p := range view.ByParticipant["ua"] {
		if p.ID == "p3" {
			uaHasTote = true
		}
	}
	for _, p := range view.ByParticipant["ub"] {
		if p.ID == "p3" {
			ubHasTote = true
		}
	}
	assert.True(t, uaHasTote)
	assert.True(t, ubHasTote)
}

func TestBuildSharedWishlistEmpty(t *testing.T) {
	view := BuildSharedWishlist(nil, []string{"ua", "ub"})
	assert.NotNil(t, view.Items)
	assert.Empty(t, view.Items)
}

func TestProductSavedByUser(t *testing.T) {
	p := Product{SavedBy: []string{"ua", "ub"}}
	assert.True(t, p.SavedByUser("ua"))
	assert.False(t, p.SavedByUser("uc"))
}
