package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"nutriflow/internal/infrastructure/storage"
	"nutriflow/pkg/errors"
	"nutriflow/pkg/logger"
	"nutriflow/pkg/response"
)

// readUpload reads the multipart file under field. At most limit+1 bytes
// are read so an oversized upload is still seen as too large downstream
// without buffering all of it. A missing file yields nil, nil.
func readUpload(c echo.Context, field string, limit int64) ([]byte, error) {
	file, err := c.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil
		}
		logger.Error("Error getting file from form: %v", err)
		return nil, errors.BadRequest("Arquivo ausente ou inválido", err)
	}

	logger.Debug("Received file: %s, size: %d bytes, type: %s", file.Filename, file.Size, file.Header.Get("Content-Type"))

	src, err := file.Open()
	if err != nil {
		return nil, errors.Internal("Erro ao ler arquivo", err)
	}
	defer src.Close()

	blob, err := io.ReadAll(io.LimitReader(src, limit+1))
	if err != nil {
		return nil, errors.Internal("Erro ao ler arquivo", err)
	}
	return blob, nil
}

// FileHandler serves uploads kept by the in-memory storage backend.
type FileHandler struct {
	files *storage.MemoryStorage
}

func NewFileHandler(files *storage.MemoryStorage) *FileHandler {
	return &FileHandler{
		files: files,
	}
}

func (h *FileHandler) ServeFile(c echo.Context) error {
	path := strings.TrimPrefix(c.Param("*"), "/")
	obj, ok := h.files.Get(path)
	if !ok {
		return response.Error(c, errors.NotFound("File", nil))
	}
	return c.Blob(http.StatusOK, obj.ContentType, obj.Data)
}
