package domain

import "strings"

// Field maps one column of the flat product record to the key it is read
// from in a raw catalogue product.
type Field struct {
	Column string
	Source string
}

// Context columns lead every exported row.
const (
	ColLatitude    = "latitude"
	ColLongitude   = "longitude"
	ColCategory    = "category"
	ColSubcategory = "subcategory"
)

// ContextColumns is the column order of the scrape context.
var ContextColumns = []string{ColLatitude, ColLongitude, ColCategory, ColSubcategory}

// catalogueFields are the product attributes ahead of the free-from tags.
// product_id and product_name are the only columns renamed from their source key.
var catalogueFields = []Field{
	{"product_id", "id"},
	{"product_name", "name"},
	{"brand", "brand"},
	{"price", "price"},
	{"original_price", "original_price"},
	{"discount_percentage", "discount_percentage"},
	{"rating", "rating"},
	{"review_count", "review_count"},
	{"availability", "availability"},
	{"image_url", "image_url"},
	{"description", "description"},
	{"weight", "weight"},
	{"unit", "unit"},
	{"is_veg", "is_veg"},
	{"is_available", "is_available"},
	{"stock_quantity", "stock_quantity"},
	{"seller_name", "seller_name"},
	{"seller_rating", "seller_rating"},
	{"delivery_time", "delivery_time"},
	{"delivery_charge", "delivery_charge"},
	{"min_order_amount", "min_order_amount"},
	{"is_express_delivery", "is_express_delivery"},
	{"is_free_delivery", "is_free_delivery"},
	{"is_cash_on_delivery", "is_cash_on_delivery"},
	{"is_online_payment", "is_online_payment"},
	{"is_instant_discount", "is_instant_discount"},
	{"instant_discount_amount", "instant_discount_amount"},
	{"is_coupon_available", "is_coupon_available"},
	{"coupon_code", "coupon_code"},
	{"coupon_discount", "coupon_discount"},
	{"is_bestseller", "is_bestseller"},
	{"is_trending", "is_trending"},
	{"is_new", "is_new"},
	{"is_featured", "is_featured"},
	{"is_recommended", "is_recommended"},
	{"is_popular", "is_popular"},
	{"is_organic", "is_organic"},
}

// FreeFromTags feed the is_<tag>_free columns, in export order.
var FreeFromTags = []string{
	"gluten", "dairy", "nut", "soy", "wheat", "egg", "fish", "shellfish",
	"pork", "beef", "lamb", "goat", "chicken", "turkey", "duck", "quail",
	"rabbit", "deer", "bison", "elk", "moose", "antelope", "buffalo", "camel",
	"horse", "donkey", "mule", "llama", "alpaca", "vicuna", "guanaco", "chinchilla",
	"guinea_pig", "hamster", "mouse", "rat", "gerbil", "ferret", "weasel", "mink",
	"otter", "badger", "skunk", "raccoon", "coati", "kinkajou", "olinguito", "ringtail",
	"cacomistle", "bassarisk", "civet", "genet", "linsang", "fossa", "mongoose", "meerkat",
	"suricate", "banded_mongoose", "dwarf_mongoose", "common_mongoose",
	"white_tailed_mongoose", "marsh_mongoose", "bushy_tailed_mongoose",
	"black_tipped_mongoose", "selous_mongoose", "meller_mongoose", "egyptian_mongoose",
	"common_slender_mongoose", "black_mongoose", "somalian_slender_mongoose",
	"rufous_mongoose", "cape_grey_mongoose", "angolan_slender_mongoose",
	"black_tailed_mongoose", "long_nosed_mongoose", "ethiopian_dwarf_mongoose",
	"common_dwarf_mongoose", "rufous_banded_mongoose", "liberian_mongoose",
	"ansorge_mongoose", "flat_headed_mongoose", "gambian_mongoose", "sooty_mongoose",
}

// ProductSchema is the one definition of the product columns. Both the live
// normalizer and the mock generator walk it, so the two paths always agree.
var ProductSchema = buildSchema()

func buildSchema() []Field {
	out := make([]Field, 0, len(catalogueFields)+len(FreeFromTags))
	out = append(out, catalogueFields...)
	for _, tag := range FreeFromTags {
		col := FreeFromColumn(tag)
		out = append(out, Field{Column: col, Source: col})
	}
	return out
}

// FreeFromColumn returns the column name for a free-from tag.
func FreeFromColumn(tag string) string { return "is_" + tag + "_free" }

// IsFlagColumn reports whether the column holds a yes/no attribute.
func IsFlagColumn(col string) bool { return strings.HasPrefix(col, "is_") }

// Columns returns the full export header: context first, then the schema.
func Columns() []string {
	out := make([]string, 0, len(ContextColumns)+len(ProductSchema))
	out = append(out, ContextColumns...)
	for _, f := range ProductSchema {
		out = append(out, f.Column)
	}
	return out
}
