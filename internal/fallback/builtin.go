package fallback

import "github.com/Hem1234567/laras-07/internal/model"

var builtin = []model.ProjectRecord{
	{
		ProjectName:            "Mumbai Trans Harbour Link (Atal Setu)",
		ProjectCode:            "MTHL-01",
		ProjectType:            model.TypeHighway,
		State:                  "Maharashtra",
		DistrictsCovered:       model.StringList{"Mumbai City", "Raigad"},
		CitiesAffected:         model.StringList{"Mumbai", "Navi Mumbai"},
		ProjectPhase:           model.PhaseCompleted,
		BudgetCrores:           17843,
		TotalLengthKM:          21.8,
		NotificationDate:       model.MustDate("2017-12-01"),
		ExpectedCompletionDate: model.MustDate("2024-01-12"),
		ImplementingAgency:     "MMRDA",
		AlignmentGeoJSON:       model.NewPoint(72.9346, 18.976),
	},
	{
		ProjectName:            "Navi Mumbai International Airport",
		ProjectCode:            "NMIA-01",
		ProjectType:            model.TypeAirport,
		State:                  "Maharashtra",
		DistrictsCovered:       model.StringList{"Raigad"},
		CitiesAffected:         model.StringList{"Navi Mumbai", "Panvel"},
		ProjectPhase:           model.PhaseConstructionStarted,
		BudgetCrores:           16700,
		TotalLengthKM:          0,
		NotificationDate:       model.MustDate("2018-01-01"),
		ExpectedCompletionDate: model.MustDate("2024-12-31"),
		ImplementingAgency:     "NMIAL / Adani Airports",
		AlignmentGeoJSON:       model.NewPoint(73.0617, 18.9919),
	},
	{
		ProjectName:            "Chennai Metro Phase 2",
		ProjectCode:            "CMRL-PH2",
		ProjectType:            model.TypeMetro,
		State:                  "Tamil Nadu",
		DistrictsCovered:       model.StringList{"Chennai", "Kancheepuram", "Tiruvallur"},
		CitiesAffected:         model.StringList{"Chennai"},
		ProjectPhase:           model.PhaseOngoing,
		BudgetCrores:           61843,
		TotalLengthKM:          118.9,
		NotificationDate:       model.MustDate("2021-02-01"),
		ExpectedCompletionDate: model.MustDate("2026-12-31"),
		ImplementingAgency:     "CMRL",
		AlignmentGeoJSON:       model.NewPoint(80.2707, 13.0827),
	},
	{
		ProjectName:            "Delhi-Mumbai Expressway",
		ProjectCode:            "DME-01",
		ProjectType:            model.TypeHighway,
		State:                  "Rajasthan",
		DistrictsCovered:       model.StringList{"Gurugram", "Alwar", "Dausa", "Sawai Madhopur", "Kota", "Ratlam", "Vadodara", "Surat"},
		CitiesAffected:         model.StringList{"Gurugram", "Jaipur", "Kota", "Vadodara", "Mumbai"},
		ProjectPhase:           model.PhaseOngoing,
		BudgetCrores:           100000,
		TotalLengthKM:          1350,
		NotificationDate:       model.MustDate("2019-03-09"),
		ExpectedCompletionDate: model.MustDate("2025-01-01"),
		ImplementingAgency:     "NHAI",
		AlignmentGeoJSON:       model.NewPoint(75.75, 26.9157),
	},
	{
		ProjectName:            "Noida International Airport (Jewar)",
		ProjectCode:            "NIA-JEWAR",
		ProjectType:            model.TypeAirport,
		State:                  "Uttar Pradesh",
		DistrictsCovered:       model.StringList{"Gautam Buddha Nagar"},
		CitiesAffected:         model.StringList{"Jewar", "Greater Noida"},
		ProjectPhase:           model.PhaseConstructionStarted,
		BudgetCrores:           29560,
		TotalLengthKM:          0,
		NotificationDate:       model.MustDate("2019-11-29"),
		ExpectedCompletionDate: model.MustDate("2024-09-30"),
		ImplementingAgency:     "YZIAPL",
		AlignmentGeoJSON:       model.NewPoint(77.61, 28.17),
	},
	{
		ProjectName:            "Mumbai-Ahmedabad High Speed Rail",
		ProjectCode:            "MAHSR-BULLET",
		ProjectType:            model.TypeRailway,
		State:                  "Gujarat",
		DistrictsCovered:       model.StringList{"Ahmedabad", "Kheda", "Vadodara", "Bharuch", "Surat", "Navsari", "Valsad", "Palghar", "Thane", "Mumbai"},
		CitiesAffected:         model.StringList{"Ahmedabad", "Surat", "Mumbai"},
		ProjectPhase:           model.PhaseOngoing,
		BudgetCrores:           110000,
		TotalLengthKM:          508,
		NotificationDate:       model.MustDate("2017-09-14"),
		ExpectedCompletionDate: model.MustDate("2027-08-15"),
		ImplementingAgency:     "NHSRCL",
		AlignmentGeoJSON:       model.NewPoint(72.8311, 21.1702),
	},
	{
		ProjectName:            "Khavda Renewable Energy Park",
		ProjectCode:            "KHAVDA-RE",
		ProjectType:            model.TypePowerPlant,
		State:                  "Gujarat",
		DistrictsCovered:       model.StringList{"Kutch"},
		CitiesAffected:         model.StringList{"Khavda"},
		ProjectPhase:           model.PhaseOngoing,
		BudgetCrores:           150000,
		TotalLengthKM:          0,
		NotificationDate:       model.MustDate("2020-01-01"),
		ExpectedCompletionDate: model.MustDate("2026-01-01"),
		ImplementingAgency:     "Multiple",
		AlignmentGeoJSON:       model.NewPoint(69.35, 24.1167),
	},
	{
		ProjectName:            "Chenab Bridge",
		ProjectCode:            "USBRL-CHENAB",
		ProjectType:            model.TypeRailway,
		State:                  "Jammu and Kashmir",
		DistrictsCovered:       model.StringList{"Reasi"},
		CitiesAffected:         model.StringList{"Kauri", "Bakkal"},
		ProjectPhase:           model.PhaseCompleted,
		BudgetCrores:           1486,
		TotalLengthKM:          1.3,
		NotificationDate:       model.MustDate("2002-01-01"),
		ExpectedCompletionDate: model.MustDate("2024-02-20"),
		ImplementingAgency:     "Konkan Railway",
		AlignmentGeoJSON:       model.NewPoint(74.8805, 33.1525),
	},
	{
		ProjectName:            "Bangalore Suburban Rail Project",
		ProjectCode:            "BSRP-KA",
		ProjectType:            model.TypeRailway,
		State:                  "Karnataka",
		DistrictsCovered:       model.StringList{"Bangalore Urban"},
		CitiesAffected:         model.StringList{"Bangalore"},
		ProjectPhase:           model.PhaseApproved,
		BudgetCrores:           15767,
		TotalLengthKM:          148,
		NotificationDate:       model.MustDate("2020-10-21"),
		ExpectedCompletionDate: model.MustDate("2026-10-01"),
		ImplementingAgency:     "K-RIDE",
		AlignmentGeoJSON:       model.NewPoint(77.5946, 12.9716),
	},
	{
		ProjectName:            "Greenfield International Airport, Parandur",
		ProjectCode:            "GIA-PARANDUR",
		ProjectType:            model.TypeAirport,
		State:                  "Tamil Nadu",
		DistrictsCovered:       model.StringList{"Kancheepuram"},
		CitiesAffected:         model.StringList{"Parandur", "Chennai"},
		ProjectPhase:           model.PhaseLandNotification,
		BudgetCrores:           20000,
		TotalLengthKM:          0,
		NotificationDate:       model.MustDate("2022-08-01"),
		ExpectedCompletionDate: model.MustDate("2029-01-01"),
		ImplementingAgency:     "TIDCO",
		AlignmentGeoJSON:       model.NewPoint(79.78, 12.93),
	},
}
