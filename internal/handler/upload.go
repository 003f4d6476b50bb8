package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"tutor-central/internal/middleware"
	"tutor-central/internal/transport/httpdto"
	tutor_errors "tutor-central/pkg/errors"

	"github.com/gin-gonic/gin"
)

// multipartOverhead leaves room for boundaries and the operation field on
// top of the image size limit.
const multipartOverhead = 64 << 10

// filePart locates the "file" part of a multipart stream on its first Read,
// so nothing is consumed when the caller is rejected up front.
type filePart struct {
	mr   *multipart.Reader
	part *multipart.Part
	err  error
}

func (f *filePart) Read(p []byte) (int, error) {
	if f.part == nil && f.err == nil {
		f.part, f.err = nextFilePart(f.mr)
	}
	if f.err != nil {
		return 0, f.err
	}
	n, err := f.part.Read(p)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		err = fmt.Errorf("%w: %w", tutor_errors.ErrTooLarge, err)
	}
	return n, err
}

func nextFilePart(mr *multipart.Reader) (*multipart.Part, error) {
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, tutor_errors.Invalid("file part is missing")
		}
		if err != nil {
			return nil, tutor_errors.Invalid("malformed multipart body: " + err.Error())
		}
		switch part.FormName() {
		case "file":
			return part, nil
		case "operation":
			name, _ := io.ReadAll(io.LimitReader(part, 64))
			if op := strings.TrimSpace(string(name)); op != httpdto.OpSingleUpload {
				return nil, tutor_errors.Invalid("multipart bodies only carry " + httpdto.OpSingleUpload)
			}
		}
	}
}

func (h *QueryHandler) singleUpload(c *gin.Context) {
	c.Set(middleware.OperationKey, httpdto.OpSingleUpload)
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)
	}
	mr, err := c.Request.MultipartReader()
	if err != nil {
		writeError(c, httpdto.OpSingleUpload, badRequest("invalid multipart request"))
		return
	}

	a, err := h.resolver.SingleUpload(c.Request.Context(), &filePart{mr: mr})
	if err != nil {
		writeError(c, httpdto.OpSingleUpload, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.OpSingleUpload, httpdto.NewAccountDTO(a)))
}
