package example

type ChannelType string

const (
	ChannelTypeDirect  ChannelType = "direct"
	ChannelTypeSupport ChannelType = "support"
)

type CaseStatus string

const (
	CaseStatusTriage   CaseStatus = "triage"
	CaseStatusResolved CaseStatus = "resolved"
)

// Label has no constants, so it is not an enum.
type Label string

type Thread struct {
	ChannelType ChannelType
	Label       Label
}

type SupportCase struct {
	Status CaseStatus
}

func bad() {
	t := &Thread{}
	t.ChannelType = "fax" // want "enum field ChannelType assigned string literal"

	sc := &SupportCase{}
	sc.Status = "resolved" // want "enum field Status assigned string literal"

	_ = SupportCase{Status: "closed"} // want "enum field Status assigned string literal"
}

func good() {
	t := &Thread{}
	t.ChannelType = ChannelTypeDirect // OK: using constant
	t.Label = "vip"                   // OK: not an enum

	sc := &SupportCase{Status: CaseStatusTriage}
	sc.Status = CaseStatusResolved
}

func alsoGood() {
	// OK: Variable, not literal
	channel := ChannelTypeSupport
	t := &Thread{ChannelType: channel}
	_ = t
}
