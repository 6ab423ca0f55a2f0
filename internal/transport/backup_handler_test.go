package transport

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jjsuplementos77-arch/FINANCAS/internal/domain"
	"github.com/jjsuplementos77-arch/FINANCAS/internal/service"
	"github.com/jjsuplementos77-arch/FINANCAS/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// brokenWriter accepts headers but fails every body write, like a client
// that hung up mid-download
type brokenWriter struct {
	*httptest.ResponseRecorder
}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset by peer")
}

func TestExportLogsFailedDownload(t *testing.T) {
	st := store.New()
	st.AddProduct(domain.Product{ID: "p1", Name: "Água", Stock: 3})
	core, logs := observer.New(zapcore.DebugLevel)
	handler := NewBackupHandler(service.NewBackupService(st, nil, nil), zap.New(core))

	w := brokenWriter{httptest.NewRecorder()}
	handler.Export(w, httptest.NewRequest(http.MethodGet, "/api/backup", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	entries := logs.FilterMessage("Failed to write backup download").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "connection reset by peer", entries[0].ContextMap()["error"])
}

func TestImportRejectsNegativeStock(t *testing.T) {
	f := newAPIFixture(t)
	f.createProduct(t, "Água", 10)

	w := f.do(t, http.MethodPost, "/api/backup/import?confirm=true",
		`{"products":[{"id":"x","name":"Xarope","stock":-4}],"sales":[{"id":"s","productId":"x","quantity":-2}]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_BACKUP", string(errorCode(t, w)))
	require.Len(t, f.store.Products(), 1)
	assert.Equal(t, 10, f.store.Products()[0].Stock)
}

func TestImportNeedsConfirmationCode(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/api/backup/import", `{"products":[],"sales":[]}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CONFIRMATION_REQUIRED", string(errorCode(t, w)))
}
