package soopify

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Client-facing messages. Upstream causes are logged, never returned.
const (
	msgMissingFields      = "필수 항목이 누락되었습니다."
	msgInvalidInput       = "입력값이 올바르지 않습니다."
	msgUnauthorized       = "권한이 없습니다."
	msgMissingLogin       = "이메일과 비밀번호를 입력해주세요."
	msgInvalidCredentials = "이메일 또는 비밀번호가 올바르지 않습니다."
	msgLoginFailed        = "로그인 처리 중 오류가 발생했습니다."
	msgLogoutFailed       = "로그아웃 처리 중 오류가 발생했습니다."
	msgTooManyRequests    = "요청이 너무 많습니다. 잠시 후 다시 시도해주세요."
	msgRequestFailed      = "요청 처리 중 오류가 발생했습니다."
	msgInquiryFailed      = "문의 조회에 실패했습니다."
	msgPostNotFound       = "게시글을 찾을 수 없습니다."
	msgPostListFailed     = "게시글 조회에 실패했습니다."
	msgPostCreateFailed   = "게시글 작성에 실패했습니다."
	msgPostUpdateFailed   = "게시글 수정에 실패했습니다."
	msgPostDeleteFailed   = "게시글 삭제에 실패했습니다."
	msgNoFile             = "파일이 없습니다."
	msgUnsupportedType    = "지원하지 않는 파일 형식입니다."
	msgImageTooLarge      = "이미지 크기는 5MB 이하여야 합니다."
	msgFileTooLarge       = "파일 크기는 10MB 이하여야 합니다."
	msgInvalidImage       = "이미지 파일을 읽을 수 없습니다."
	msgUploadFailed       = "업로드 처리 중 오류가 발생했습니다."
	msgInsightListFailed  = "인사이트 조회에 실패했습니다."
	msgInsightNotFound    = "인사이트 글을 찾을 수 없습니다."
	msgFeaturedLimit      = "Featured 글은 최대 6개까지만 설정할 수 있습니다."
	msgFeaturedFailed     = "Featured 설정 변경에 실패했습니다."
	msgNotFound           = "요청한 경로를 찾을 수 없습니다."
)

// APIError is a handler failure with the HTTP status and the message shown to
// the client. Err is the upstream cause, if any.
type APIError struct {
	Code    int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%d %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func badRequest(msg string) *APIError {
	return &APIError{Code: http.StatusBadRequest, Message: msg}
}

func unauthorized(msg string) *APIError {
	return &APIError{Code: http.StatusUnauthorized, Message: msg}
}

func notFound(msg string) *APIError {
	return &APIError{Code: http.StatusNotFound, Message: msg}
}

func tooManyRequests() *APIError {
	return &APIError{Code: http.StatusTooManyRequests, Message: msgTooManyRequests}
}

func internalError(msg string, err error) *APIError {
	return &APIError{Code: http.StatusInternalServerError, Message: msg, Err: err}
}

// errorEnvelope is the JSON body of every failed /api response.
type errorEnvelope struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func isAPIRequest(c echo.Context) bool {
	p := c.Request().URL.Path
	return p == "/api" || strings.HasPrefix(p, "/api/")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := msgRequestFailed
	var apiErr *APIError
	var he *echo.HTTPError
	switch {
	case errors.As(err, &apiErr):
		code, msg = apiErr.Code, apiErr.Message
	case errors.As(err, &he):
		code = he.Code
		switch {
		case code == http.StatusNotFound:
			msg = msgNotFound
		case code < 500:
			msg = http.StatusText(code)
		}
	}
	if code >= 500 {
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}

	if isAPIRequest(c) {
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorEnvelope{OK: false, Error: msg})
		return
	}

	switch {
	case code == http.StatusNotFound:
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
	case code >= 500:
		_ = RenderStatus(c, code, a.Views.ServerError())
	default:
		a.Echo.DefaultHTTPErrorHandler(echo.NewHTTPError(code, msg), c)
	}
}
