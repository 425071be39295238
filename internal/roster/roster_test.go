package roster

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"vms-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, RawEmpty, Classify(nil).Kind)
	assert.Equal(t, RawEmpty, Classify([]byte("null")).Kind)
	assert.Equal(t, RawJSONString, Classify([]byte(`"[{\"assetName\":\"Laptop\"}]"`)).Kind)
	assert.Equal(t, RawArray, Classify([]byte(`[{"assetName":"Laptop"}]`)).Kind)
}

func TestDecodeAssets_BothForms(t *testing.T) {
	arrayForm := json.RawMessage(`[{"assetName":"Laptop","serialNumber":"SN1","assetType":"Personal"}]`)
	stringForm := json.RawMessage(`"[{\"assetName\":\"Laptop\",\"serialNumber\":\"SN1\",\"assetType\":\"Personal\"}]"`)

	fromArray, err := DecodeAssets(arrayForm)
	require.NoError(t, err)
	fromString, err := DecodeAssets(stringForm)
	require.NoError(t, err)

	assert.Equal(t, fromArray, fromString)
	require.Len(t, fromArray, 1)
	assert.Equal(t, "Laptop", fromArray[0].AssetName)
	assert.Equal(t, "SN1", fromArray[0].SerialNumber)
}

func TestDecodeGuests_EmptyAndMalformed(t *testing.T) {
	guests, err := DecodeGuests(nil)
	require.NoError(t, err)
	assert.Empty(t, guests)

	guests, err = DecodeGuests(json.RawMessage(`""`))
	require.NoError(t, err)
	assert.Empty(t, guests)

	_, err = DecodeGuests(json.RawMessage(`"not json"`))
	assert.Error(t, err)
}

// TestSeed_NormalizationIdempotence: seeding from a JSON string, then
// re-serializing the commit payload and re-seeding, yields the same records
// with no duplication, field loss or temp-id collision.
func TestSeed_NormalizationIdempotence(t *testing.T) {
	e := NewEditor(nil)
	stringForm := json.RawMessage(`"[{\"assetName\":\"Laptop\",\"serialNumber\":\"SN1\"},{\"assetName\":\"Badge\"}]"`)
	guestForm := json.RawMessage(`[{"guestName":"Ali"}]`)

	e.Seed(stringForm, guestForm)
	first := e.Commit()

	reserialized, err := json.Marshal(first.Assets)
	require.NoError(t, err)
	guestsAgain, err := json.Marshal(first.Guest)
	require.NoError(t, err)

	e.Seed(reserialized, guestsAgain)
	second := e.Commit()

	assert.Equal(t, first, second)
	require.Len(t, second.Assets, 2)
	assert.Equal(t, "Company", second.Assets[0].AssetType)

	seen := map[string]bool{}
	for _, a := range e.Assets() {
		assert.False(t, seen[a.TempID], "temp id collision: %s", a.TempID)
		seen[a.TempID] = true
	}
}

func TestAddAndRemove_PreservesOrderAndTempIDs(t *testing.T) {
	e := NewEditor(nil)
	ctx := context.Background()

	a1, err := e.AddAsset(ctx, "Laptop", "SN1", "", nil)
	require.NoError(t, err)
	a2, err := e.AddAsset(ctx, "Badge", "", "Personal", nil)
	require.NoError(t, err)
	a3, err := e.AddAsset(ctx, "Phone", "", "", nil)
	require.NoError(t, err)

	assert.Equal(t, "Company", a1.AssetType)
	assert.Equal(t, "Personal", a2.AssetType)

	require.True(t, e.RemoveAsset(1))
	left := e.Assets()
	require.Len(t, left, 2)
	assert.Equal(t, a1.TempID, left[0].TempID)
	assert.Equal(t, a3.TempID, left[1].TempID)

	assert.False(t, e.RemoveAsset(5))
	assert.False(t, e.RemoveAsset(-1))
}

func TestAddAsset_RequiresName(t *testing.T) {
	e := NewEditor(nil)
	_, err := e.AddAsset(context.Background(), "  ", "", "", nil)
	assert.Error(t, err)
	_, err = e.AddGuest(context.Background(), "", nil)
	assert.Error(t, err)
}

type stubUploader struct {
	path string
	err  error
	got  []string
}

func (s *stubUploader) UploadImage(_ context.Context, tempKey string, slot int, fileName, _ string, _ []byte) (string, error) {
	s.got = append(s.got, fileName)
	if s.err != nil {
		return "", s.err
	}
	return s.path, nil
}

// TestAddGuest_PhotoUploadFallback: a failed upload keeps the local object
// URL and still adds the guest.
func TestAddGuest_PhotoUploadFallback(t *testing.T) {
	up := &stubUploader{err: errors.New("storage down")}
	e := NewEditor(up)

	g, err := e.AddGuest(context.Background(), "Ali", &PhotoUpload{
		FileName: "ali.jpg",
		Data:     []byte{1, 2, 3},
		LocalURL: "blob:local-preview",
	})
	require.NoError(t, err)
	assert.Equal(t, "blob:local-preview", g.ImgURL)

	up2 := &stubUploader{path: "visitor-images/k/1-ali.jpg"}
	e2 := NewEditor(up2)
	g2, err := e2.AddGuest(context.Background(), "Sara", &PhotoUpload{
		FileName: "sara.jpg",
		Data:     []byte{1},
		LocalURL: "blob:x",
	})
	require.NoError(t, err)
	assert.Equal(t, "visitor-images/k/1-ali.jpg", g2.ImgURL)
}

func TestCommit_StripsTempIDs(t *testing.T) {
	e := NewEditor(nil)
	_, err := e.AddAsset(context.Background(), "Laptop", "SN1", "", nil)
	require.NoError(t, err)

	p := e.Commit()
	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "tempId")
	assert.Equal(t, []models.AssetRecord{{AssetName: "Laptop", SerialNumber: "SN1", AssetType: "Company"}}, p.Assets)
}
