package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"orderdesk/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if ue, ok := usecase.AsError(err); ok {
		switch ue.Kind {
		case usecase.KindValidation:
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: ue.Message})
		case usecase.KindConflict:
			return c.JSON(http.StatusConflict, ErrorResponse{Error: ue.Message})
		case usecase.KindNotFound:
			return c.JSON(http.StatusNotFound, ErrorResponse{Error: ue.Message})
		}
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// Content-Type に関係なく JSON として読む。空 body は {} と同じ扱い。
// 数値は json.Number のまま残す（金額の変換は usecase 側）。
func decodeJSON(c echo.Context, v any) error {
	dec := json.NewDecoder(c.Request().Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
