package types

import "time"

// IncomeBasis tells which income figure a bank applies its DSR rules to.
type IncomeBasis string

const (
	IncomeBasisNet   IncomeBasis = "NET"
	IncomeBasisGross IncomeBasis = "GROSS"
)

// Identity represents the applicant's residency / employment identity.
type Identity string

const (
	IdentityCitizen           Identity = "citizen"
	IdentityPermanentResident Identity = "permanent_resident"
	IdentityForeigner         Identity = "foreigner"
	IdentityCivilServant      Identity = "civil_servant"
	IdentityGLCEmployee       Identity = "glc_employee"
	IdentitySelfEmployed      Identity = "self_employed"
)

type EmploymentType string

const (
	EmploymentSalaried     EmploymentType = "salaried"
	EmploymentSelfEmployed EmploymentType = "self_employed"
	EmploymentGovernment   EmploymentType = "government"
	EmploymentContract     EmploymentType = "contract"
)

type ProductType string

const (
	ProductPersonalLoan ProductType = "personal_loan"
	ProductMortgage     ProductType = "mortgage"
	ProductCreditCard   ProductType = "credit_card"
	ProductBusinessLoan ProductType = "business_loan"
)

type CommitmentType string

const (
	CommitmentHousing     CommitmentType = "housing"
	CommitmentAuto        CommitmentType = "auto"
	CommitmentPersonal    CommitmentType = "personal"
	CommitmentStudentLoan CommitmentType = "student_loan"
	CommitmentCreditCard  CommitmentType = "credit_card"
)

// BankStatus classifies a single bank's verdict on the requested loan.
type BankStatus string

const (
	StatusApproved BankStatus = "approved"
	StatusRisky    BankStatus = "risky"
	StatusRejected BankStatus = "rejected"
)

// DsrTier maps an income threshold to the DSR ceiling that applies from
// that threshold upward. Tiers are kept sorted ascending by threshold.
type DsrTier struct {
	IncomeThreshold float64 `json:"incomeThreshold"`
	MaxDsrPercent   float64 `json:"maxDsrPercent"`
}

// RateRange is a bank's quoted annual rate band for a product, used for
// estimation when the applicant has no concrete quoted rate.
type RateRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type LoanLimits struct {
	AbsoluteMax           float64 `json:"absoluteMax"`
	IncomeMultiplier      float64 `json:"incomeMultiplier"`
	MaxLtvPercent         float64 `json:"maxLtvPercent"`
	CreditLimitMultiplier float64 `json:"creditLimitMultiplier"`
}

type EligibilityRules struct {
	MinAge               int  `json:"minAge"`
	MaxAge               int  `json:"maxAge"`
	MinEmploymentMonths  int  `json:"minEmploymentMonths"`
	MinBusinessAgeMonths int  `json:"minBusinessAgeMonths"`
	CivilServantOnly     bool `json:"civilServantOnly,omitempty"`
}

// SpecialRecognition holds the per-stream income discount factors, each a
// fraction in (0,1] applied to the raw figure before DSR math. A zero value
// means the bank does not recognize that stream at all.
type SpecialRecognition struct {
	SelfEmployed float64 `json:"selfEmployed"`
	Rental       float64 `json:"rental"`
	Foreign      float64 `json:"foreign"`
}

// BankStandard is one row of the static bank standards table. The table is
// loaded once at startup and never mutated afterwards.
type BankStandard struct {
	BankID             string                    `json:"bankId"`
	Name               string                    `json:"name"`
	IncomeBasis        IncomeBasis               `json:"incomeBasis"`
	DsrTiers           []DsrTier                 `json:"dsrTiers"`
	MinIncomeByProduct map[ProductType]float64   `json:"minIncomeByProduct"`
	LoanLimits         LoanLimits                `json:"loanLimits"`
	InterestRateRange  map[ProductType]RateRange `json:"interestRateRange"`
	Eligibility        EligibilityRules          `json:"eligibilityRules"`
	Recognition        SpecialRecognition        `json:"specialRecognition"`
}

// StatutoryDeductions are the monthly amounts withheld from gross salary.
type StatutoryDeductions struct {
	EPF       float64 `json:"epf"`
	IncomeTax float64 `json:"incomeTax"`
	Socso     float64 `json:"socso"`
}

func (d StatutoryDeductions) Total() float64 {
	return d.EPF + d.IncomeTax + d.Socso
}

// Commitment is one existing monthly debt obligation. For credit cards the
// used amount is supplied instead of a payment and the implied servicing
// cost is derived at a fixed utilization rate.
type Commitment struct {
	Type                 CommitmentType `json:"type"`
	MonthlyPayment       float64        `json:"monthlyPayment,omitempty"`
	CreditCardUsedAmount float64        `json:"creditCardUsedAmount,omitempty"`
}

// RequestedLoan describes the loan the applicant wants evaluated.
// AssumedAnnualRate of 0 means "no quoted rate"; estimation then falls back
// to each bank's rate range. PropertyValue only matters for mortgages.
type RequestedLoan struct {
	ProductType       ProductType `json:"productType"`
	Amount            float64     `json:"amount"`
	TenureMonths      int         `json:"tenureMonths"`
	AssumedAnnualRate float64     `json:"assumedAnnualRate,omitempty"`
	PropertyValue     float64     `json:"propertyValue,omitempty"`
}

// ApplicantProfile is built fresh for every evaluation request and
// discarded after the response is rendered.
type ApplicantProfile struct {
	Identity               Identity            `json:"identity"`
	EmploymentType         EmploymentType      `json:"employmentType"`
	Age                    int                 `json:"age"`
	EmploymentTenureMonths int                 `json:"employmentTenureMonths"`
	BusinessAgeMonths      int                 `json:"businessAgeMonths,omitempty"`
	GrossMonthlyIncome     float64             `json:"grossMonthlyIncome"`
	Deductions             StatutoryDeductions `json:"statutoryDeductions"`
	RentalMonthlyIncome    float64             `json:"rentalMonthlyIncome,omitempty"`
	ForeignMonthlyIncome   float64             `json:"foreignMonthlyIncome,omitempty"`
	ExistingCommitments    []Commitment        `json:"existingCommitments"`
	RequestedLoan          RequestedLoan       `json:"requestedLoan"`
}

// PerBankResult is one bank's verdict on the requested loan.
type PerBankResult struct {
	BankID            string     `json:"bankId"`
	BankName          string     `json:"bankName"`
	RecognizedIncome  float64    `json:"recognizedIncome"`
	DsrLimitApplied   float64    `json:"dsrLimitApplied"`
	ProjectedDSR      float64    `json:"projectedDSR"`
	Status            BankStatus `json:"status"`
	MarginPercent     float64    `json:"marginPercent"`
	MaxMonthlyPayment float64    `json:"maxMonthlyPayment"`
	MaxLoanAmount     float64    `json:"maxLoanAmount"`
	EstimatedRate     float64    `json:"estimatedRate"`
	Reasons           []string   `json:"reasons,omitempty"`
}

// EvaluationResult is the full outcome of one affordability evaluation.
// The top-level DSR figures are the bank-agnostic view against net income;
// per-bank figures use that bank's recognized income. MaxLoanAmount and
// MaxMonthlyPayment carry the best figure among approved banks.
type EvaluationResult struct {
	EvaluationID               string          `json:"evaluationId"`
	NetMonthlyIncome           float64         `json:"netMonthlyIncome"`
	TotalExistingCommitment    float64         `json:"totalExistingCommitment"`
	ProjectedNewMonthlyPayment float64         `json:"projectedNewMonthlyPayment"`
	ProjectedDSR               float64         `json:"projectedDSR"`
	MaxMonthlyPayment          float64         `json:"maxMonthlyPayment"`
	MaxLoanAmount              float64         `json:"maxLoanAmount"`
	PerBankResults             []PerBankResult `json:"perBankResults"`
	RankedRecommendations      []PerBankResult `json:"rankedRecommendations"`
	CreatedAt                  time.Time       `json:"createdAt"`
}

// EvaluationEvent is the summary published to Kafka / RabbitMQ after an
// evaluation completes.
type EvaluationEvent struct {
	EvaluationID  string      `json:"evaluationId"`
	ProductType   ProductType `json:"productType"`
	ProjectedDSR  float64     `json:"projectedDSR"`
	ApprovedBanks int         `json:"approvedBanks"`
	TopBank       string      `json:"topBank,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
}
