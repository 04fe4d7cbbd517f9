package backend

import "github.com/christopherklint97/ponto/internal/records"

type LoginRequest struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

// OvertimeEntry is one hora extra of an employee.
type OvertimeEntry struct {
	records.TimeRecord
	Justification string
	Status        string
}

// OvertimeSummary is the listar-horas response for one employee.
type OvertimeSummary struct {
	TotalHours float64
	Entries    []OvertimeEntry
}

// Candidate field names of response envelopes, tried in order.
var (
	overtimeTotalFields  = []string{"totalHoras", "total", "horasTotais", "totalHorasExtras"}
	overtimeListFields   = []string{"horasExtras", "registros", "lista", "horas"}
	justificationFields  = []string{"justificativa", "motivo", "descricao"}
	overtimeStatusFields = []string{"status", "situacao"}
	listEnvelopeFields   = []string{"dados", "data", "content", "registros", "apontamentos"}
	missingHoursFields   = []string{"horasFaltantes", "total", "horas"}
)
