package domain

var Tables = []interface{}{
	&Product{},
	&DailyRecord{},
}
