package forward_test

import (
	"testing"

	. "github.com/onsi/gomega"

	"github.com/tgwatch/tgwatch/internal/forward"
)

func TestEscapeMarkdownV2EscapesEverySpecialChar(t *testing.T) {
	g := NewWithT(t)
	g.Expect(forward.EscapeMarkdownV2("a.b!c_d*e")).To(Equal(`a\.b\!c\_d\*e`))
}

func TestEscapeMarkdownV2LeavesPlainTextAlone(t *testing.T) {
	g := NewWithT(t)
	g.Expect(forward.EscapeMarkdownV2("hello world")).To(Equal("hello world"))
}

func TestEscapeMarkdownV2EmptyString(t *testing.T) {
	g := NewWithT(t)
	g.Expect(forward.EscapeMarkdownV2("")).To(Equal(""))
}
