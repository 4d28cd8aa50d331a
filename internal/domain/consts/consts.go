package consts

type CustomerType string

const (
	CustomerTypePrivate CustomerType = "Private"
	CustomerTypeCompany CustomerType = "Company"
)

type FeeType string

const (
	FeeTypeManagement   FeeType = "Management"
	FeeTypeContribution FeeType = "Contribution"
	FeeTypePerformance  FeeType = "Performance"
)

type MandateStatus string

const (
	MandateStatusCreated   MandateStatus = "Created"
	MandateStatusActive    MandateStatus = "Active"
	MandateStatusCancelled MandateStatus = "Cancelled"
)

type InstructionType string

const (
	InstructionTypeMonthly InstructionType = "Monthly"
	InstructionTypeOneOff  InstructionType = "OneOff"
)
