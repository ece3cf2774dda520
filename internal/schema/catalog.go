package schema

func currency(name, label string, critical bool) Field {
	return Field{Name: name, Label: label, Type: TypeCurrency, Critical: critical}
}

func percentage(name, label string, critical bool) Field {
	return Field{Name: name, Label: label, Type: TypePercentage, Critical: critical}
}

func text(name, label string, critical bool) Field {
	return Field{Name: name, Label: label, Type: TypeText, Critical: critical}
}

func number(name, label string, critical bool) Field {
	return Field{Name: name, Label: label, Type: TypeNumber, Critical: critical}
}

func date(name, label string, critical bool) Field {
	return Field{Name: name, Label: label, Type: TypeDate, Critical: critical}
}

func boolean(name, label string, critical bool) Field {
	return Field{Name: name, Label: label, Type: TypeBoolean, Critical: critical}
}

func list(name, label string, critical bool) Field {
	return Field{Name: name, Label: label, Type: TypeList, Critical: critical}
}

// pricing is the premium/limit/deductible head shared by every product; the
// coverage label varies by line of business.
func pricing(coverageLabel, deductibleLabel string) []Field {
	return []Field{
		currency(FieldPremium, "Annual Premium", true),
		currency(FieldCoverageAmount, coverageLabel, true),
		currency(FieldDeductible, deductibleLabel, false),
	}
}

func product(name string, head []Field, rest ...Field) Schema {
	fields := append([]Field{}, head...)
	fields = append(fields, rest...)
	fields = append(fields,
		list("exclusions", "Key Exclusions", false),
		text(FieldPolicyTerm, "Policy Term", false),
	)
	return Schema{Product: name, Fields: fields}
}

func catalog() []Schema {
	return []Schema{
		product("Group Health Insurance", pricing("Sum Insured", "Deductible"),
			text("room_rent_limit", "Room Rent Limit", true),
			percentage("copay", "Co-payment", true),
			number("pre_existing_waiting_period", "Pre-existing Disease Waiting Period (months)", true),
			boolean("maternity_cover", "Maternity Cover", false),
			currency("maternity_limit", "Maternity Limit", false),
			text("pre_post_hospitalization", "Pre/Post Hospitalization", false),
			boolean("daycare_procedures", "Day-care Procedures", false),
			number("network_hospitals", "Network Hospitals", false),
			percentage("claim_settlement_ratio", "Claim Settlement Ratio", false),
		),
		product("Group Personal Accident", pricing("Sum Insured", "Deductible"),
			currency("accidental_death_benefit", "Accidental Death Benefit", true),
			percentage("permanent_total_disability", "Permanent Total Disability", true),
			percentage("permanent_partial_disability", "Permanent Partial Disability", false),
			currency("temporary_total_disability", "Temporary Total Disability (weekly)", false),
			currency("medical_expenses", "Medical Expenses", false),
			currency("education_benefit", "Education Benefit", false),
		),
		product("Group Term Life", pricing("Sum Assured", "Deductible"),
			currency("free_cover_limit", "Free Cover Limit", true),
			boolean("accidental_death_rider", "Accidental Death Rider", false),
			boolean("terminal_illness_benefit", "Terminal Illness Benefit", false),
			number("waiting_period", "Waiting Period (days)", false),
			percentage("claim_settlement_ratio", "Claim Settlement Ratio", false),
		),
		product("Fire and Allied Perils", pricing("Sum Insured", "Deductible"),
			list("perils_covered", "Perils Covered", true),
			boolean("earthquake_cover", "Earthquake Cover", true),
			boolean("terrorism_cover", "Terrorism Cover", false),
			boolean("business_interruption", "Business Interruption", false),
			boolean("reinstatement_value", "Reinstatement Value Basis", false),
			list("add_on_covers", "Add-on Covers", false),
		),
		product("Marine Cargo", pricing("Sum Insured", "Deductible"),
			text("coverage_basis", "Institute Cargo Clause", true),
			text("transit_type", "Transit Type", true),
			currency("per_transit_limit", "Per Transit Limit", true),
			boolean("war_strikes_cover", "War & Strikes Cover", false),
			boolean("warehouse_to_warehouse", "Warehouse to Warehouse", false),
		),
		product("Motor Fleet", pricing("Insured Declared Value", "Compulsory Deductible"),
			number("fleet_size", "Fleet Size", false),
			boolean("own_damage_cover", "Own Damage Cover", true),
			currency("third_party_liability", "Third Party Liability", true),
			boolean("zero_depreciation", "Zero Depreciation", false),
			boolean("roadside_assistance", "Roadside Assistance", false),
			percentage("no_claim_bonus", "No Claim Bonus", false),
		),
		product("Workmen Compensation", pricing("Limit of Indemnity", "Deductible"),
			number("employee_count", "Employees Covered", true),
			currency("wage_roll", "Annual Wage Roll", true),
			currency("medical_extension", "Medical Extension", false),
			boolean("occupational_disease_cover", "Occupational Disease Cover", false),
			boolean("contractor_workers_cover", "Contractor Workers Cover", false),
		),
		product("Directors and Officers Liability", pricing("Limit of Liability", "Retention"),
			boolean("side_a_cover", "Side A Cover", true),
			boolean("side_b_cover", "Side B Cover", false),
			boolean("side_c_cover", "Side C (Entity) Cover", false),
			date("retroactive_date", "Retroactive Date", true),
			number("extended_reporting_period", "Extended Reporting Period (days)", false),
			text("defense_costs", "Defense Costs", false),
		),
		product("Commercial General Liability", pricing("Limit of Liability", "Deductible"),
			currency("per_occurrence_limit", "Per Occurrence Limit", true),
			currency("aggregate_limit", "Aggregate Limit", true),
			boolean("products_liability", "Products Liability", false),
			text("jurisdiction", "Jurisdiction", false),
			date("retroactive_date", "Retroactive Date", false),
		),
		product("Cyber Insurance", pricing("Limit of Liability", "Retention"),
			list("first_party_cover", "First Party Covers", true),
			currency("third_party_liability", "Third Party Liability", true),
			boolean("ransomware_cover", "Ransomware Cover", true),
			number("business_interruption_waiting_period", "BI Waiting Period (hours)", false),
			boolean("incident_response", "Incident Response Services", false),
			boolean("regulatory_fines", "Regulatory Fines & Penalties", false),
		),
		product("Professional Indemnity", pricing("Limit of Indemnity", "Deductible"),
			date("retroactive_date", "Retroactive Date", true),
			text("defense_costs", "Defense Costs", false),
			number("extended_reporting_period", "Extended Reporting Period (days)", false),
			text("territorial_limits", "Territorial Limits", false),
		),
	}
}
