package schema

func defaultAliases() AliasTable {
	return AliasTable{
		FieldPremium: {
			"annual premium", "total premium", "gross premium", "net premium",
			"premium amount", "premium payable", "quoted premium", "annual_premium", "total_premium",
		},
		FieldCoverageAmount: {
			"sum insured", "sum_insured", "sum assured", "sum_assured", "total sum insured",
			"coverage", "cover amount", "coverage limit", "limit of liability", "limit of indemnity",
			"insured declared value", "idv", "policy limit",
		},
		FieldDeductible: {
			"excess", "retention", "self insured retention", "deductible amount",
			"compulsory deductible", "voluntary deductible",
		},
		FieldPolicyTerm: {
			"policy period", "policy duration", "tenure", "term", "period of insurance",
		},
		"exclusions": {
			"key exclusions", "major exclusions", "exclusion list", "not covered",
		},
		"room_rent_limit": {
			"room rent", "room rent capping", "room rent cap", "room category",
		},
		"copay": {
			"co-pay", "co pay", "co-payment", "copayment", "co_payment",
		},
		"pre_existing_waiting_period": {
			"ped waiting period", "pre-existing disease waiting period",
			"waiting period for pre-existing diseases", "pre existing waiting period",
		},
		"maternity_cover": {
			"maternity", "maternity benefit", "maternity coverage",
		},
		"maternity_limit": {
			"maternity sum insured", "maternity sub-limit", "maternity sublimit",
		},
		"pre_post_hospitalization": {
			"pre and post hospitalization", "pre-post hospitalisation", "pre & post hospitalization",
		},
		"daycare_procedures": {
			"day care procedures", "day-care", "daycare",
		},
		"network_hospitals": {
			"hospital network", "cashless hospitals", "network hospital count",
		},
		"claim_settlement_ratio": {
			"csr", "claims settlement ratio", "claim ratio",
		},
		"accidental_death_benefit": {
			"accidental death", "ad benefit", "death benefit",
		},
		"permanent_total_disability": {
			"ptd", "permanent total disablement",
		},
		"permanent_partial_disability": {
			"ppd", "permanent partial disablement",
		},
		"temporary_total_disability": {
			"ttd", "weekly compensation", "temporary total disablement",
		},
		"free_cover_limit": {
			"fcl", "free cover", "automatic acceptance limit",
		},
		"perils_covered": {
			"covered perils", "perils", "insured perils",
		},
		"earthquake_cover": {
			"earthquake", "eq cover", "earthquake add-on",
		},
		"terrorism_cover": {
			"terrorism", "terrorism add-on",
		},
		"business_interruption": {
			"loss of profit", "bi cover", "business interruption cover",
		},
		"coverage_basis": {
			"icc", "institute cargo clauses", "cargo clause", "basis of cover",
		},
		"per_transit_limit": {
			"per sending limit", "per bottom limit", "transit limit",
		},
		"third_party_liability": {
			"tp liability", "third party cover", "liability limit",
		},
		"zero_depreciation": {
			"zero dep", "nil depreciation", "bumper to bumper",
		},
		"no_claim_bonus": {
			"ncb", "no claims bonus",
		},
		"wage_roll": {
			"annual wages", "wages", "payroll",
		},
		"retroactive_date": {
			"retro date", "retroactive cover date", "prior acts date",
		},
		"extended_reporting_period": {
			"erp", "discovery period", "extended reporting",
		},
		"ransomware_cover": {
			"ransomware", "cyber extortion", "extortion cover",
		},
		"first_party_cover": {
			"first party covers", "first-party coverage",
		},
		"territorial_limits": {
			"territory", "territorial scope", "geographical limits",
		},
	}
}
