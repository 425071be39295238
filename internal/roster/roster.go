package roster

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"vms-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// The roster editor accumulates assets and guests locally during the
// check-in flow. Nothing here touches the visitor record until Commit; an
// abandoned flow simply drops the editor.

// RawKind tags the two representations the backend has historically used
// for the assets/guest columns.
type RawKind int

const (
	RawEmpty RawKind = iota
	RawJSONString
	RawArray
)

// RawField is the classified form of an assets/guest column value. The
// classification happens once at the boundary; everything past Decode works
// on native slices.
type RawField struct {
	Kind  RawKind
	Value json.RawMessage
}

// Classify inspects a raw column value without decoding it fully.
func Classify(raw json.RawMessage) RawField {
	trim := bytes.TrimSpace(raw)
	if len(trim) == 0 || bytes.Equal(trim, []byte("null")) {
		return RawField{Kind: RawEmpty}
	}
	if trim[0] == '"' {
		return RawField{Kind: RawJSONString, Value: trim}
	}
	return RawField{Kind: RawArray, Value: trim}
}

func decodeList[T any](raw json.RawMessage) ([]T, error) {
	f := Classify(raw)
	payload := f.Value
	switch f.Kind {
	case RawEmpty:
		return nil, nil
	case RawJSONString:
		var inner string
		if err := json.Unmarshal(f.Value, &inner); err != nil {
			return nil, err
		}
		inner = strings.TrimSpace(inner)
		if inner == "" || inner == "null" {
			return nil, nil
		}
		payload = []byte(inner)
	}
	var out []T
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeAssets decodes an assets column that may be a native array or a
// JSON-encoded string of one.
func DecodeAssets(raw json.RawMessage) ([]models.AssetRecord, error) {
	return decodeList[models.AssetRecord](raw)
}

// DecodeGuests decodes a guest column, tolerating the same two forms.
func DecodeGuests(raw json.RawMessage) ([]models.GuestRecord, error) {
	return decodeList[models.GuestRecord](raw)
}

// Asset is a locally held asset entry. TempID exists only for list
// rendering and removal; Commit strips it.
type Asset struct {
	TempID       string `json:"tempId"`
	AssetName    string `json:"assetName"`
	SerialNumber string `json:"serialNumber,omitempty"`
	AssetType    string `json:"assetType"`
	ImgURL       string `json:"imgUrl,omitempty"`
}

// Guest is a locally held guest entry.
type Guest struct {
	TempID    string `json:"tempId"`
	GuestName string `json:"guestName"`
	ImgURL    string `json:"imgUrl,omitempty"`
}

// ImageUploader stores an asset/guest photo under a temporary key and slot
// index and returns the stored file path.
type ImageUploader interface {
	UploadImage(ctx context.Context, tempKey string, slot int, fileName, contentType string, data []byte) (string, error)
}

// PhotoUpload is an optional photo attached while adding an entry. LocalURL
// is the object/blob URL the UI already holds; it is the fallback when the
// upload fails, so the add itself never blocks on storage.
type PhotoUpload struct {
	FileName    string
	ContentType string
	Data        []byte
	LocalURL    string
}

// Editor holds the in-progress roster for one check-in flow. Not safe for
// concurrent use; each flow owns its editor exclusively.
type Editor struct {
	TempKey  string
	Uploader ImageUploader

	assets []Asset
	guests []Guest
	slot   int
}

// NewEditor creates an editor scoped by a fresh temporary key.
func NewEditor(uploader ImageUploader) *Editor {
	return &Editor{
		TempKey:  uuid.NewString(),
		Uploader: uploader,
	}
}

func newTempID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// Seed loads partially populated assets/guest values from a prior step.
// Either value may be a native array or a JSON-encoded string; malformed
// input leaves that list empty rather than failing the flow.
func (e *Editor) Seed(assetsRaw, guestsRaw json.RawMessage) {
	e.assets = e.assets[:0]
	e.guests = e.guests[:0]

	assets, err := DecodeAssets(assetsRaw)
	if err != nil {
		log.Warn().Err(err).Msg("roster: discarding malformed assets value")
	}
	for _, a := range assets {
		e.assets = append(e.assets, Asset{
			TempID:       newTempID(),
			AssetName:    a.AssetName,
			SerialNumber: a.SerialNumber,
			AssetType:    defaultAssetType(a.AssetType),
			ImgURL:       a.ImgURL,
		})
	}

	guests, err := DecodeGuests(guestsRaw)
	if err != nil {
		log.Warn().Err(err).Msg("roster: discarding malformed guest value")
	}
	for _, g := range guests {
		e.guests = append(e.guests, Guest{
			TempID:    newTempID(),
			GuestName: g.GuestName,
			ImgURL:    g.ImgURL,
		})
	}
}

func defaultAssetType(t string) string {
	if t == "" {
		return "Company"
	}
	return t
}

// resolvePhoto uploads the photo and returns the stored path, falling back
// to the local URL when the upload fails. Upload failure only warns.
func (e *Editor) resolvePhoto(ctx context.Context, photo *PhotoUpload) string {
	if photo == nil {
		return ""
	}
	if e.Uploader == nil || len(photo.Data) == 0 {
		return photo.LocalURL
	}
	e.slot++
	path, err := e.Uploader.UploadImage(ctx, e.TempKey, e.slot, photo.FileName, photo.ContentType, photo.Data)
	if err != nil {
		log.Warn().Err(err).Str("temp_key", e.TempKey).Msg("roster: photo upload failed, keeping local preview")
		return photo.LocalURL
	}
	return path
}

// AddAsset appends a new asset. AssetName is required; assetType defaults
// to "Company".
func (e *Editor) AddAsset(ctx context.Context, assetName, serialNumber, assetType string, photo *PhotoUpload) (Asset, error) {
	if strings.TrimSpace(assetName) == "" {
		return Asset{}, fmt.Errorf("Asset name is required")
	}
	a := Asset{
		TempID:       newTempID(),
		AssetName:    strings.TrimSpace(assetName),
		SerialNumber: strings.TrimSpace(serialNumber),
		AssetType:    defaultAssetType(assetType),
		ImgURL:       e.resolvePhoto(ctx, photo),
	}
	e.assets = append(e.assets, a)
	return a, nil
}

// AddGuest appends a new guest. GuestName is required.
func (e *Editor) AddGuest(ctx context.Context, guestName string, photo *PhotoUpload) (Guest, error) {
	if strings.TrimSpace(guestName) == "" {
		return Guest{}, fmt.Errorf("Guest name is required")
	}
	g := Guest{
		TempID:    newTempID(),
		GuestName: strings.TrimSpace(guestName),
		ImgURL:    e.resolvePhoto(ctx, photo),
	}
	e.guests = append(e.guests, g)
	return g, nil
}

// RemoveAsset deletes the asset at index i. Remaining items keep their temp
// ids and order.
func (e *Editor) RemoveAsset(i int) bool {
	if i < 0 || i >= len(e.assets) {
		return false
	}
	e.assets = append(e.assets[:i], e.assets[i+1:]...)
	return true
}

// RemoveGuest deletes the guest at index i.
func (e *Editor) RemoveGuest(i int) bool {
	if i < 0 || i >= len(e.guests) {
		return false
	}
	e.guests = append(e.guests[:i], e.guests[i+1:]...)
	return true
}

// Assets returns a copy of the current asset list.
func (e *Editor) Assets() []Asset {
	out := make([]Asset, len(e.assets))
	copy(out, e.assets)
	return out
}

// Guests returns a copy of the current guest list.
func (e *Editor) Guests() []Guest {
	out := make([]Guest, len(e.guests))
	copy(out, e.guests)
	return out
}

// CommitPayload is the minimal server shape merged into the visitor record
// by a single PATCH. Temp ids and local-only fields are stripped.
type CommitPayload struct {
	Assets []models.AssetRecord `json:"assets"`
	Guest  []models.GuestRecord `json:"guest"`
}

// Commit maps the in-memory lists to the server shape. The editor stays
// editable afterwards; a failed PATCH simply retries Commit.
func (e *Editor) Commit() CommitPayload {
	p := CommitPayload{
		Assets: make([]models.AssetRecord, 0, len(e.assets)),
		Guest:  make([]models.GuestRecord, 0, len(e.guests)),
	}
	for _, a := range e.assets {
		p.Assets = append(p.Assets, models.AssetRecord{
			AssetName:    a.AssetName,
			SerialNumber: a.SerialNumber,
			AssetType:    a.AssetType,
			ImgURL:       a.ImgURL,
		})
	}
	for _, g := range e.guests {
		p.Guest = append(p.Guest, models.GuestRecord{
			GuestName: g.GuestName,
			ImgURL:    g.ImgURL,
		})
	}
	return p
}
