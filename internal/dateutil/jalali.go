package dateutil

import (
	"strconv"
	"strings"
	"time"
)

// persianMonths are the Solar Hijri month names, Farvardin first.
var persianMonths = [12]string{
	"فروردین", "اردیبهشت", "خرداد", "تیر", "مرداد", "شهریور",
	"مهر", "آبان", "آذر", "دی", "بهمن", "اسفند",
}

var (
	gregorianMonthDays = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
	jalaliMonthDays    = [12]int{31, 31, 31, 31, 31, 31, 30, 30, 30, 30, 30, 29}
)

// ToJalali converts a Gregorian date (year >= 1600) to the Solar Hijri
// calendar using the 33-year arithmetic cycle.
func ToJalali(gy, gm, gd int) (jy, jm, jd int) {
	gy2 := gy - 1600
	gm2 := gm - 1
	gd2 := gd - 1

	gDayNo := 365*gy2 + (gy2+3)/4 - (gy2+99)/100 + (gy2+399)/400
	for i := 0; i < gm2; i++ {
		gDayNo += gregorianMonthDays[i]
	}
	if gm2 > 1 && isGregorianLeap(gy) {
		gDayNo++
	}
	gDayNo += gd2

	jDayNo := gDayNo - 79
	cycles := jDayNo / 12053
	jDayNo %= 12053

	jy = 979 + 33*cycles + 4*(jDayNo/1461)
	jDayNo %= 1461
	if jDayNo >= 366 {
		jy += (jDayNo - 1) / 365
		jDayNo = (jDayNo - 1) % 365
	}

	i := 0
	for ; i < 11 && jDayNo >= jalaliMonthDays[i]; i++ {
		jDayNo -= jalaliMonthDays[i]
	}
	return jy, i + 1, jDayNo + 1
}

func isGregorianLeap(y int) bool {
	return (y%4 == 0 && y%100 != 0) || y%400 == 0
}

// PersianDigits replaces ASCII digits with Extended Arabic-Indic digits.
func PersianDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return '۰' + (r - '0')
		}
		return r
	}, s)
}

// FormatJalali renders t as "D MMMM YYYY" in Persian, e.g. "۲۶ مهر ۱۴۰۵".
func FormatJalali(t time.Time) string {
	jy, jm, jd := ToJalali(t.Year(), int(t.Month()), t.Day())
	return PersianDigits(strconv.Itoa(jd)) + " " + persianMonths[jm-1] + " " + PersianDigits(strconv.Itoa(jy))
}
