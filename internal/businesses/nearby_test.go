package businesses

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNearbyOrdersByDistanceWithinRadius(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	for _, in := range []NewBusiness{
		// roughly 1.1 km north of the origin
		{ID: "north", Name: "North", City: "Georgetown", WhatsApp: "1", Lat: ptr(6.8175), Lng: ptr(-58.1633)},
		{ID: "here", Name: "Here", City: "Georgetown", WhatsApp: "1", Lat: ptr(6.8075), Lng: ptr(-58.1633)},
		// Linden, about 90 km away
		{ID: "far", Name: "Far", City: "Linden", WhatsApp: "1", Lat: ptr(5.9960), Lng: ptr(-58.3040)},
		{ID: "nowhere", Name: "Nowhere", City: "Georgetown", WhatsApp: "1"},
	} {
		_, err := repo.Create(ctx, in)
		require.NoError(t, err)
	}

	got := repo.Nearby(ctx, 6.8075, -58.1633, 5000, 0)
	require.Len(t, got, 2)
	assert.Equal(t, "here", got[0].ID)
	assert.InDelta(t, 0, got[0].DistanceMeters, 1)
	assert.Equal(t, "north", got[1].ID)
	assert.InDelta(t, 1112, got[1].DistanceMeters, 20)

	limited := repo.Nearby(ctx, 6.8075, -58.1633, 5000, 1)
	require.Len(t, limited, 1)

	assert.Empty(t, repo.Nearby(ctx, 6.8075, -58.1633, 0, 10))
}

func TestNearbyAcrossAntimeridian(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	for _, in := range []NewBusiness{
		{ID: "west", Name: "West", City: "Suva", WhatsApp: "1", Lat: ptr(-17), Lng: ptr(179.98)},
		{ID: "east", Name: "East", City: "Suva", WhatsApp: "1", Lat: ptr(-17), Lng: ptr(-179.99)},
		{ID: "greenwich", Name: "Greenwich", City: "London", WhatsApp: "1", Lat: ptr(-17), Lng: ptr(0)},
	} {
		_, err := repo.Create(ctx, in)
		require.NoError(t, err)
	}

	got := repo.Nearby(ctx, -17, 179.99, 5000, 0)
	require.Len(t, got, 2)
	assert.Equal(t, "west", got[0].ID)
	assert.Equal(t, "east", got[1].ID)

	got = repo.Nearby(ctx, -17, -179.995, 5000, 0)
	require.Len(t, got, 2)
	assert.Equal(t, "east", got[0].ID)
	assert.Equal(t, "west", got[1].ID)
}

func TestWhatsAppLink(t *testing.T) {
	assert.Equal(t, "whatsapp://send?phone=5926001234", WhatsAppLink("592-600-1234", ""))
	assert.Equal(t, "whatsapp://send?phone=5926001234", WhatsAppLink("600 1234", ""))
	assert.Equal(t,
		"whatsapp://send?phone=5926001234&text=Hello%2C%20I%20have%20a%20question.",
		Business{WhatsApp: "5926001234"}.WhatsAppLink("Hello, I have a question."),
	)
}
