package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const healthHTML = "<h1>Health Check: Server is running successfully!</h1>"

func Health(c echo.Context) error {
	return c.HTML(http.StatusOK, healthHTML)
}
