package filters

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fleetdesk/fleetdesk/pkg/catalog"
)

type hierarchy struct {
	store *catalog.Store

	categoryA string
	categoryB string
	makeA     string // in categoryA
	makeB     string // in categoryB
	modelA    string // in makeA
	variantA  string // in modelA
	variantX  string // in a different model under makeA
}

func newHierarchy(t *testing.T) hierarchy {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	store := catalog.NewStore(db)
	require.NoError(t, store.AutoMigrate())

	h := hierarchy{store: store}
	h.categoryA = uuid.New().String()
	h.categoryB = uuid.New().String()
	require.NoError(t, db.Create(&catalog.Category{ID: h.categoryA, Name: "robot", Label: "Robot"}).Error)
	require.NoError(t, db.Create(&catalog.Category{ID: h.categoryB, Name: "drone", Label: "Drone"}).Error)

	h.makeA = uuid.New().String()
	h.makeB = uuid.New().String()
	require.NoError(t, db.Create(&catalog.Make{ID: h.makeA, CategoryID: h.categoryA, Name: "lego", Label: "LEGO"}).Error)
	require.NoError(t, db.Create(&catalog.Make{ID: h.makeB, CategoryID: h.categoryB, Name: "dji", Label: "DJI"}).Error)

	h.modelA = uuid.New().String()
	otherModel := uuid.New().String()
	require.NoError(t, db.Create(&catalog.Model{ID: h.modelA, MakeID: h.makeA, Name: "ev3", Label: "EV3"}).Error)
	require.NoError(t, db.Create(&catalog.Model{ID: otherModel, MakeID: h.makeA, Name: "nxt", Label: "NXT"}).Error)

	h.variantA = uuid.New().String()
	h.variantX = uuid.New().String()
	require.NoError(t, db.Create(&catalog.Variant{ID: h.variantA, ModelID: h.modelA, Name: "edu", Label: "Education"}).Error)
	require.NoError(t, db.Create(&catalog.Variant{ID: h.variantX, ModelID: otherModel, Name: "home", Label: "Home"}).Error)

	return h
}

func TestResolveCascade_UnsetParentClearsDescendants(t *testing.T) {
	h := newHierarchy(t)

	got, err := ResolveCascade(h.store, Cascade{
		MakeID:    h.makeA,
		ModelID:   h.modelA,
		VariantID: h.variantA,
	})
	require.NoError(t, err)
	assert.Equal(t, Cascade{}, got)
}

func TestResolveCascade_ForeignMakeClearsChain(t *testing.T) {
	h := newHierarchy(t)

	// makeB belongs to categoryB, so make/model/variant all reset.
	got, err := ResolveCascade(h.store, Cascade{
		CategoryID: h.categoryA,
		MakeID:     h.makeB,
		ModelID:    h.modelA,
		VariantID:  h.variantA,
	})
	require.NoError(t, err)
	assert.Equal(t, Cascade{CategoryID: h.categoryA}, got)
}

func TestResolveCascade_ForeignVariantClearedAlone(t *testing.T) {
	h := newHierarchy(t)

	// variantX belongs to a different model, so only the variant resets.
	got, err := ResolveCascade(h.store, Cascade{
		CategoryID: h.categoryA,
		MakeID:     h.makeA,
		ModelID:    h.modelA,
		VariantID:  h.variantX,
	})
	require.NoError(t, err)
	assert.Equal(t, Cascade{
		CategoryID: h.categoryA,
		MakeID:     h.makeA,
		ModelID:    h.modelA,
	}, got)
}

func TestResolveCascade_ValidChainPassesThrough(t *testing.T) {
	h := newHierarchy(t)

	in := Cascade{
		CategoryID: h.categoryA,
		MakeID:     h.makeA,
		ModelID:    h.modelA,
		VariantID:  h.variantA,
	}
	got, err := ResolveCascade(h.store, in)
	require.NoError(t, err)
	assert.Equal(t, in, got)
}
