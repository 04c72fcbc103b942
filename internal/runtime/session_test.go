package runtime

import (
	"testing"
	"time"

	gotgprototypes "github.com/celestix/gotgproto/types"
	. "github.com/onsi/gomega"

	"github.com/tgwatch/tgwatch/internal/types"
)

func TestChatExternalIDFormatsAsDecimal(t *testing.T) {
	g := NewWithT(t)
	g.Expect(chatExternalID(-1001234567890)).To(Equal("-1001234567890"))
}

func TestClassifyMessageTypeWithoutMediaIsText(t *testing.T) {
	g := NewWithT(t)
	g.Expect(classifyMessageType(&gotgprototypes.Message{})).To(Equal(types.MessageTypeText))
}

func TestDerefAllCopiesEveryElement(t *testing.T) {
	g := NewWithT(t)
	a, b := types.GroupDoc{GroupName: "a"}, types.GroupDoc{GroupName: "b"}

	out := derefAll([]*types.GroupDoc{&a, &b})

	g.Expect(out).To(HaveLen(2))
	g.Expect(out[0].GroupName).To(Equal("a"))
	g.Expect(out[1].GroupName).To(Equal("b"))
}

func TestSignalAdapterTreatsMissingLastActivityAsStale(t *testing.T) {
	g := NewWithT(t)
	sig, ok := (&signalAdapter{}).signalFor(&types.AccountDoc{Status: types.AccountActive})

	g.Expect(ok).To(BeTrue())
	g.Expect(sig.Connected).To(BeTrue())
	g.Expect(sig.LastEventAge).To(Equal(time.Hour))
}

func TestSignalAdapterFlagsErrorStatusAsDisconnectedWithReconnects(t *testing.T) {
	g := NewWithT(t)
	sig, ok := (&signalAdapter{}).signalFor(&types.AccountDoc{Status: types.AccountError})

	g.Expect(ok).To(BeTrue())
	g.Expect(sig.Connected).To(BeFalse())
	g.Expect(sig.ReconnectCountInWindow).To(BeNumerically(">", 0))
}
