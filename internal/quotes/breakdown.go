package quotes

import (
	"github.com/google/uuid"

	"github.com/fabriq-erp/fabriq/internal/bom"
)

// QuoteBreakdown is the full itemized result of assembling an order's price.
// The monetary field names are fixed: downstream presentation and PDF export
// reproduce every line from this record without recomputation.
type QuoteBreakdown struct {
	OrderID  int64     `json:"order_id"`
	QuoteRef uuid.UUID `json:"quote_ref"`

	MaterialsTotal  float64 `json:"custo_total_materiais"`
	ProcessesTotal  float64 `json:"custo_total_processos"`
	LaborTotal      float64 `json:"custo_total_mao_de_obra"`
	ExtrasTotal     float64 `json:"custo_total_itens_extras"`
	FreightValue    float64 `json:"valor_frete"`
	Subtotal        float64 `json:"subtotal"`
	MarginPercent   float64 `json:"margem_lucro_percentual"`
	MarginValue     float64 `json:"valor_margem_lucro"`
	TotalWithMargin float64 `json:"total_com_margem"`
	TaxPercent      float64 `json:"impostos_percentual"`
	TaxValue        float64 `json:"valor_impostos"`
	FinalTotal      float64 `json:"custo_total"`

	Materials []bom.Line  `json:"itens_materiais"`
	Processes []bom.Line  `json:"itens_processos"`
	Labor     []bom.Line  `json:"itens_mao_de_obra"`
	Extras    []ExtraItem `json:"itens_extras"`

	// CyclesDetected is forwarded from cost resolution as a diagnostic.
	CyclesDetected int `json:"cycles_detected,omitempty"`
}
