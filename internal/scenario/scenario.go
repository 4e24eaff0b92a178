package scenario

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prperemyshlev/converter-smoke/internal/probe"
)

const (
	// IndexPrompt is the prompt text rendered by the converter's index page.
	IndexPrompt = "Enter the height in centimeters"

	// GoldenHeightCm and GoldenInches are the conversion fixture checked by
	// Defaults. The fragment is produced by the converter and is compared
	// verbatim, including the run of spaces.
	GoldenHeightCm = 10
	GoldenInches   = "3    inches"

	heightsPage = "heights.jsp"
)

// Scenario is one request against the application plus the assertions on
// its response.
type Scenario struct {
	Name   string
	Method string
	// Path is resolved against the application base URL.
	Path string
	// Status is the expected status code; zero skips the check.
	Status int
	// Contains must appear verbatim in the body with line breaks removed.
	Contains string
	// Selectors are CSS selectors that must each match an HTML element.
	Selectors []string
}

// IndexPage fetches the application root and expects the height prompt.
func IndexPage() Scenario {
	return Scenario{
		Name:     "index page",
		Method:   http.MethodGet,
		Path:     "",
		Status:   http.StatusOK,
		Contains: IndexPrompt,
	}
}

// HeightsPage submits heightCm to the conversion action and expects fragment
// in the rendered result. The value travels in the query string, the body is
// empty.
func HeightsPage(heightCm int, fragment string) Scenario {
	q := url.Values{}
	q.Set("heightCm", strconv.Itoa(heightCm))

	return Scenario{
		Name:     fmt.Sprintf("heights page (heightCm=%d)", heightCm),
		Method:   http.MethodPost,
		Path:     heightsPage + "?" + q.Encode(),
		Contains: fragment,
	}
}

// Defaults returns the index and conversion smoke scenarios.
func Defaults() []Scenario {
	return []Scenario{
		IndexPage(),
		HeightsPage(GoldenHeightCm, GoldenInches),
	}
}

// Result is the outcome of running one Scenario.
type Result struct {
	Scenario   string
	Method     string
	URL        string
	StatusCode int
	Duration   time.Duration
	Err        error
}

func (r Result) Passed() bool {
	return r.Err == nil
}

// Kind returns the failure kind, or probe.KindUnknown for a passing result.
func (r Result) Kind() probe.Kind {
	return probe.KindOf(r.Err)
}

// Outcome is "pass" or the failure kind.
func (r Result) Outcome() string {
	if r.Passed() {
		return "pass"
	}
	return r.Kind().String()
}

// Report aggregates the results of one run.
type Report struct {
	RunID   string
	Started time.Time
	Results []Result
}

func (r Report) Passed() bool {
	return len(r.Failures()) == 0
}

func (r Report) Failures() []Result {
	var failed []Result
	for _, res := range r.Results {
		if !res.Passed() {
			failed = append(failed, res)
		}
	}
	return failed
}
