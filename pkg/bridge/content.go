package bridge

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	verrors "github.com/vango-dev/hostbridge/internal/errors"
	"github.com/vango-dev/hostbridge/pkg/vdom"
)

// ErrInvalidChild is wrapped by the E001 error returned for a child that is
// neither an element nor a string or number.
var ErrInvalidChild = errors.New("bridge: invalid child")

// Partition splits a flattened child list into text content and element
// children. hasContent reports whether any primitive child was present,
// so that an empty string child still sets content. nil and booleans are
// skipped; any other child is an error.
func Partition(children []any) (content string, structural []*vdom.Element, hasContent bool, err error) {
	var sb strings.Builder
	for _, child := range children {
		switch c := child.(type) {
		case nil, bool:
		case *vdom.Element:
			if c != nil {
				structural = append(structural, c)
			}
		default:
			if !vdom.IsContent(c) {
				return "", nil, false, verrors.New("E001").
					WithDetail(fmt.Sprintf("Children must be elements, strings or numbers; got %T.", c)).
					Wrap(ErrInvalidChild)
			}
			sb.WriteString(formatContent(c))
			hasContent = true
		}
	}
	return sb.String(), structural, hasContent, nil
}

func formatContent(v any) string {
	switch c := v.(type) {
	case string:
		return c
	case int:
		return strconv.Itoa(c)
	case int8:
		return strconv.FormatInt(int64(c), 10)
	case int16:
		return strconv.FormatInt(int64(c), 10)
	case int32:
		return strconv.FormatInt(int64(c), 10)
	case int64:
		return strconv.FormatInt(c, 10)
	case uint:
		return strconv.FormatUint(uint64(c), 10)
	case uint8:
		return strconv.FormatUint(uint64(c), 10)
	case uint16:
		return strconv.FormatUint(uint64(c), 10)
	case uint32:
		return strconv.FormatUint(uint64(c), 10)
	case uint64:
		return strconv.FormatUint(c, 10)
	case float32:
		return strconv.FormatFloat(float64(c), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	default:
		return fmt.Sprint(c)
	}
}
