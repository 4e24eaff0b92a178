// Package fakeconverter serves the HTTP surface of the height converter
// application so the smoke scenarios can be exercised without deploying it.
package fakeconverter

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/converter-smoke/internal/handler"
	"go.uber.org/zap"
)

const (
	cmPerInch = 2.54
	cmPerFoot = 30.48
)

const indexPage = `<!DOCTYPE html>
<html>
<head>
<title>Height Converter</title>
</head>
<body>
<form action="heights.jsp" method="post">
<p>Enter the height in centimeters:</p>
<input type="text" name="heightCm">
<input type="submit" value="Submit">
</form>
</body>
</html>
`

const heightsPage = `<!DOCTYPE html>
<html>
<head>
<title>Height Converter</title>
</head>
<body>
<p>Height in feet and inches:</p>
<p>%d    feet</p>
<p>%d    inches</p>
</body>
</html>
`

// Options tweak the behavior of the fake application.
type Options struct {
	// App is the application path segment, "converter" when empty.
	App    string
	Logger *zap.Logger
	// IndexStatus overrides the index page status code.
	IndexStatus int
	// BreakBody aborts every response after its first line.
	BreakBody bool
}

// NewRouter builds the gin engine serving the converter pages.
func NewRouter(opts Options) *gin.Engine {
	app := strings.Trim(opts.App, "/")
	if app == "" {
		app = "converter"
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(handler.LoggerMiddleware(logger))

	c := &converter{opts: opts}
	group := router.Group("/" + app)
	{
		group.GET("/", c.index)
		group.GET("/heights.jsp", c.heights)
		group.POST("/heights.jsp", c.heights)
	}

	return router
}

type converter struct {
	opts Options
}

func (h *converter) index(c *gin.Context) {
	status := h.opts.IndexStatus
	if status == 0 {
		status = http.StatusOK
	}
	h.render(c, status, indexPage)
}

func (h *converter) heights(c *gin.Context) {
	raw := c.Query("heightCm")
	if raw == "" {
		raw = c.PostForm("heightCm")
	}

	cm, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || cm < 0 || math.IsInf(cm, 0) || math.IsNaN(cm) {
		h.render(c, http.StatusBadRequest, fmt.Sprintf("<p>Invalid height %q</p>\n", raw))
		return
	}

	feet, inches := Convert(cm)
	h.render(c, http.StatusOK, fmt.Sprintf(heightsPage, feet, inches))
}

func (h *converter) render(c *gin.Context, status int, page string) {
	if !h.opts.BreakBody {
		c.Data(status, "text/html; charset=utf-8", []byte(page))
		return
	}

	first, _, _ := strings.Cut(page, "\n")
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	_, _ = c.Writer.WriteString(first + "\n")
	c.Writer.Flush()
	panic(http.ErrAbortHandler)
}

// Convert splits a height in centimeters into whole feet and the remaining
// whole inches, truncating fractions.
func Convert(cm float64) (feet, inches int) {
	totalInches := cm / cmPerInch
	feet = int(cm / cmPerFoot)
	inches = int(math.Mod(totalInches, 12))
	return feet, inches
}
