// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package template

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/nathan-osman/go-sunrise"
	"github.com/wneessen/go-moonphase"

	"github.com/wneessen/weather-widget/internal/config"
	"github.com/wneessen/weather-widget/internal/presenter"
)

// moonPhaseIcon maps go-moonphase phase names to their emoji.
var moonPhaseIcon = map[string]string{
	"New Moon":        "🌑",
	"Waxing Crescent": "🌒",
	"First Quarter":   "🌓",
	"Waxing Gibbous":  "🌔",
	"Full Moon":       "🌕",
	"Waning Gibbous":  "🌖",
	"Third Quarter":   "🌗",
	"Waning Crescent": "🌘",
}

// DisplayData is what the card template is executed with.
type DisplayData struct {
	Current       presenter.DisplayableWeather
	IconWithSpace string

	// Pre-formatted detail values
	FeelsLike string
	Humidity  string
	Wind      string

	// Sun and moon data for the location at UpdateTime, sun times in the location's zone
	UpdateTime             time.Time
	SunriseTime            time.Time
	SunsetTime             time.Time
	IsDaytime              bool
	Moonphase              string
	MoonphaseIcon          string
	MoonphaseIconWithSpace string
}

type Templates struct {
	Card *template.Template
}

func New(conf *config.Config) (*Templates, error) {
	tpls := new(Templates)

	tpl, err := template.New("card").Funcs(templateFuncMap()).Parse(conf.Templates.Card)
	if err != nil {
		return tpls, fmt.Errorf("failed to parse card template: %w", err)
	}
	tpls.Card = tpl

	return tpls, nil
}

// RenderCard executes the card template for data into w.
func (t *Templates) RenderCard(w io.Writer, data DisplayData) error {
	if err := t.Card.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render card template: %w", err)
	}
	return nil
}

// NewDisplayData fills a DisplayData for weather as seen at now.
func NewDisplayData(weather presenter.DisplayableWeather, now time.Time) DisplayData {
	data := DisplayData{
		Current:       weather,
		IconWithSpace: EmojiWithSpace(weather.Icon),
		FeelsLike:     strconv.Itoa(weather.ApparentTemperature) + "°C",
		Humidity:      formatRaw(weather.RelativeHumidity) + "%",
		Wind:          formatRaw(weather.WindSpeed) + " km/h",
		UpdateTime:    now,
	}

	zone := weather.Location()
	local := now.In(zone)
	rise, set := sunrise.SunriseSunset(weather.Latitude, weather.Longitude, local.Year(), local.Month(),
		local.Day())
	data.SunriseTime, data.SunsetTime = rise.In(zone), set.In(zone)
	if now.After(data.SunriseTime) && now.Before(data.SunsetTime) {
		data.IsDaytime = true
	}

	data.Moonphase = moonphase.New(now).PhaseName()
	data.MoonphaseIcon = moonPhaseIcon[data.Moonphase]
	data.MoonphaseIconWithSpace = EmojiWithSpace(data.MoonphaseIcon)

	return data
}

func templateFuncMap() template.FuncMap {
	return template.FuncMap{
		"timeFormat":  timeFormat,
		"floatFormat": floatFormat,
		"lc":          strings.ToLower,
		"uc":          strings.ToUpper,
	}
}

func timeFormat(val time.Time, fmt string) string {
	return val.Format(fmt)
}

func floatFormat(val float64, precision int) string {
	return fmt.Sprintf("%.*f", precision, val)
}

// formatRaw prints val the way the API delivered it, without trailing zeros.
func formatRaw(val float64) string {
	return strconv.FormatFloat(val, 'f', -1, 64)
}

func EmojiWithSpace(emoji string) string {
	if emoji == "" {
		return ""
	}
	width := runewidth.StringWidth(emoji)
	return fmt.Sprintf("%s%s", emoji, strings.Repeat(" ", width+1))
}
