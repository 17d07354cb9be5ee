package fraud

// Score evaluates a transaction against the customer's profile and recent
// history. Pure in-memory computation: never fails, never mutates its
// inputs, and depends only on the three arguments (time-based rules anchor
// on the transaction's own timestamp). Safe for concurrent use.
//
// The recent window is taken as supplied: the average and velocity rules
// compute over the list as-is, so callers decide whether the scored
// transaction itself is included.
func Score(tx *Transaction, customer *Customer, recent []Transaction) *Assessment {
	in := &ruleInput{tx: tx, customer: customer, recent: recent}

	score := 0
	reasons := []string{}
	alerts := []Alert{}

	for _, r := range scoringRules {
		pts := r.points(in)
		if pts <= 0 {
			continue
		}
		score += pts
		reasons = append(reasons, r.reason)
		alerts = append(alerts, Alert{
			Rule:     r.name,
			Category: r.category,
			Severity: r.severity,
			Points:   pts,
			Message:  r.reason,
		})
	}

	return &Assessment{
		TransactionID: tx.ID,
		CustomerID:    customer.ID,
		Score:         score,
		IsFraud:       score >= FraudThreshold,
		Severity:      SeverityForScore(score),
		Reasons:       reasons,
		Alerts:        alerts,
		EvaluatedAt:   tx.Date,
	}
}
