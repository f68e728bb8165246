package stats

// Role identifies the semantic axis a classification dimension plays within
// a statistical table.
type Role string

const (
	RoleArea     Role = "area"
	RoleAge      Role = "age"
	RoleSex      Role = "sex"
	RoleIndustry Role = "industry"
	RoleItem     Role = "item"
)

// roleKeywords are the provider's dimension-name tokens used for role
// detection. The whole keyword surface lives in this table so a locale or
// provider change is a one-place edit.
var roleKeywords = map[Role]string{
	RoleAge:      "年齢",
	RoleSex:      "男女",
	RoleArea:     "集計範囲",
	RoleIndustry: "産業",
	RoleItem:     "項目",
}

// Title tokens used to detect which tables feed the population summary.
const (
	TitleTokenAge      = "年齢"
	TitleTokenSex      = "男女"
	TitleTokenIndustry = "産業別"
)

// Code labels the aggregator matches against. Sex labels match exactly;
// item labels match by substring because providers suffix them freely.
const (
	LabelBothSexes = "男女計"
	LabelMale      = "男"
	LabelFemale    = "女"

	ItemTokenEstablishments = "事業所数"
	ItemTokenEmployees      = "従業者数"
)

// Keyword returns the dimension-name token for a role.
func Keyword(role Role) string {
	return roleKeywords[role]
}
