package model_test

import (
	"encoding/json"
	"strings"

	"basegraph.app/courier/internal/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Metadata", func() {
	Describe("MessageMetadata", func() {
		It("maps known keys to fields and keeps unknown keys", func() {
			raw := []byte(`{"autoReply":true,"clientMessageId":"c-1","locale":"de","nested":{"a":1}}`)

			var meta model.MessageMetadata
			Expect(json.Unmarshal(raw, &meta)).To(Succeed())

			Expect(meta.AutoReply).To(BeTrue())
			Expect(meta.ClientMessageID).To(HaveValue(Equal("c-1")))
			Expect(meta.Extra).To(HaveLen(2))
			Expect(string(meta.Extra["locale"])).To(Equal(`"de"`))
			Expect(string(meta.Extra["nested"])).To(MatchJSON(`{"a":1}`))
		})

		It("writes unknown keys back untouched", func() {
			raw := `{"autoReply":true,"locale":"de","nested":{"a":[1,2]}}`

			var meta model.MessageMetadata
			Expect(json.Unmarshal([]byte(raw), &meta)).To(Succeed())

			out, err := json.Marshal(meta)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(MatchJSON(raw))
		})

		It("lets known fields win over a colliding extra key", func() {
			meta := model.MessageMetadata{
				AutoReply: true,
				Extra:     map[string]json.RawMessage{"autoReply": json.RawMessage(`false`)},
			}

			out, err := json.Marshal(meta)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(MatchJSON(`{"autoReply":true}`))
		})

		It("treats null as empty", func() {
			var meta model.MessageMetadata
			Expect(json.Unmarshal([]byte(`null`), &meta)).To(Succeed())
			Expect(meta.AutoReply).To(BeFalse())
			Expect(meta.Extra).To(BeNil())
		})

		It("rejects a non-object payload", func() {
			var meta model.MessageMetadata
			Expect(json.Unmarshal([]byte(`[1,2]`), &meta)).NotTo(Succeed())
		})
	})

	Describe("Sanitize", func() {
		It("drops denied keys regardless of case and keeps the rest", func() {
			meta := model.ThreadMetadata{
				Topic: ptr("refund"),
				Extra: map[string]json.RawMessage{
					"apiKey":   json.RawMessage(`"k"`),
					"PASSWORD": json.RawMessage(`"p"`),
					"internal": json.RawMessage(`{}`),
					"color":    json.RawMessage(`"blue"`),
				},
			}

			clean := meta.Sanitize()

			Expect(clean.Topic).To(HaveValue(Equal("refund")))
			Expect(clean.Extra).To(HaveLen(1))
			Expect(clean.Extra).To(HaveKey("color"))
			Expect(meta.Extra).To(HaveLen(4), "original must not be mutated")
		})

		It("handles empty extra", func() {
			Expect(model.CaseMetadata{}.Sanitize().Extra).To(BeNil())
		})
	})

	Describe("MetadataSchemas", func() {
		It("describes all three metadata types", func() {
			schemas := model.MetadataSchemas()
			Expect(schemas).To(HaveKey("thread"))
			Expect(schemas).To(HaveKey("message"))
			Expect(schemas).To(HaveKey("case"))

			out, err := json.Marshal(schemas["message"])
			Expect(err).NotTo(HaveOccurred())
			Expect(string(out)).To(ContainSubstring("autoReply"))
			Expect(string(out)).NotTo(ContainSubstring("Extra"))
		})
	})
})

var _ = Describe("Enums", func() {
	It("validates channel types", func() {
		Expect(model.ChannelTypeSupport.Valid()).To(BeTrue())
		Expect(model.ChannelType("broadcast").Valid()).To(BeFalse())
	})

	It("validates case status and priority", func() {
		Expect(model.CaseStatusWaitingOnCustomer.Valid()).To(BeTrue())
		Expect(model.CaseStatus("reopened").Valid()).To(BeFalse())
		Expect(model.CasePriorityUrgent.Valid()).To(BeTrue())
		Expect(model.CasePriority("critical").Valid()).To(BeFalse())
	})

	It("marks resolved and closed as terminal", func() {
		Expect(model.CaseStatusResolved.Terminal()).To(BeTrue())
		Expect(model.CaseStatusClosed.Terminal()).To(BeTrue())
		Expect(model.CaseStatusWaitingOnCustomer.Terminal()).To(BeFalse())
	})
})

var _ = Describe("Message", func() {
	It("previews the stored body", func() {
		msg := model.Message{Body: "hello there"}
		Expect(msg.Preview()).To(HaveValue(Equal("hello there")))
	})

	It("previews an attachment-only message as empty", func() {
		msg := model.Message{Attachments: []model.Attachment{{FileName: "invoice.pdf"}}}
		Expect(msg.Preview()).To(HaveValue(BeEmpty()))
	})

	It("keeps long bodies whole", func() {
		long := strings.Repeat("é", 600)
		msg := model.Message{Body: long}
		Expect(msg.Preview()).To(HaveValue(Equal(long)))
	})
})
