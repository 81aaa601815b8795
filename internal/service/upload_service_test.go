package service

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/moodle-gateway/internal/models"
	"github.com/campuskit/moodle-gateway/internal/repository"
)

type memoryStorage struct {
	files map[string][]byte
}

func (m *memoryStorage) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	payload, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	if m.files == nil {
		m.files = map[string][]byte{}
	}
	m.files[name] = payload
	return "uploads/" + name, nil
}

func multipartFile(t *testing.T, name string, payload []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(&buf, writer.Boundary())
	form, err := reader.ReadForm(int64(len(payload)) + 1024)
	require.NoError(t, err)
	return form.File["file"][0]
}

func TestUploadServiceStoresAllowedFile(t *testing.T) {
	db := setupServiceDB(t)
	storage := &memoryStorage{}
	svc := NewUploadService(storage, repository.NewUploadRepository(db), 1<<20, zerolog.Nop())

	pdf := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("a"), 64)...)
	file := multipartFile(t, "Essay Draft.PDF", pdf)

	stored, err := svc.Store(context.Background(), file, 1, 42)
	require.NoError(t, err)
	require.Equal(t, "application/pdf", stored.MimeType)
	require.Equal(t, "essay-draft.pdf", stored.FileName)
	require.NotEmpty(t, stored.Checksum)
	require.Len(t, storage.files, 1)

	var record models.SubmissionUpload
	require.NoError(t, db.First(&record).Error)
	require.Equal(t, uint(1), record.UserID)
	require.Equal(t, uint(42), record.AssignmentID)
}

func TestUploadServiceRejectsDisallowedType(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewUploadService(&memoryStorage{}, repository.NewUploadRepository(db), 1<<20, zerolog.Nop())

	elf := append([]byte{0x7f, 'E', 'L', 'F'}, bytes.Repeat([]byte{0}, 64)...)
	file := multipartFile(t, "malware.bin", elf)

	_, err := svc.Store(context.Background(), file, 1, 42)
	require.ErrorIs(t, err, ErrUploadTypeNotAllowed)

	var count int64
	require.NoError(t, db.Model(&models.SubmissionUpload{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestUploadServiceRejectsOversizedFile(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewUploadService(&memoryStorage{}, repository.NewUploadRepository(db), 32, zerolog.Nop())

	pdf := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("a"), 128)...)
	file := multipartFile(t, "big.pdf", pdf)

	_, err := svc.Store(context.Background(), file, 1, 42)
	require.ErrorIs(t, err, ErrUploadTooLarge)
}
