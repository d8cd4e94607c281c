package query

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

// TopN parses the `n` query parameter for ranked reports, capped at maxN.
func TopN(reqCtx *gin.Context, defaultN, maxN int) (int, error) {
	raw := reqCtx.DefaultQuery("n", strconv.Itoa(defaultN))
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid n: %q", raw)
	}
	if n > maxN {
		n = maxN
	}
	return n, nil
}
