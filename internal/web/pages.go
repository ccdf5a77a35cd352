package web

import (
	"net/http"
	"strings"

	"github.com/John-Robertt/vitrina/internal/contact"
	"github.com/John-Robertt/vitrina/internal/content"
	"github.com/John-Robertt/vitrina/internal/domain"
	"github.com/John-Robertt/vitrina/internal/i18n"
	"github.com/John-Robertt/vitrina/internal/resolve"
)

type navItem struct {
	Name   string
	URL    string
	Active bool
}

// pageData 是 layout 的数据；Body 是各页面自己的视图。
type pageData struct {
	Lang      i18n.Lang
	Title     string
	Company   string
	Divisions []navItem
	SwitchURL string
	Year      int
	Body      any
}

type cardView struct {
	Slug    string
	Name    string
	Summary string
	URL     string
	Slot    *slotView
}

type contactView struct {
	Lang     i18n.Lang
	WhatsApp string
	Mailto   string
	Gmail    string
	Outlook  string
	Phone    string
	Email    string
	Address  string
}

type homeBody struct {
	Hero    *slotView
	Tagline string
	Cards   []cardView
}

type divisionBody struct {
	Hero    *slotView
	Name    string
	Summary string
	Cards   []cardView
}

type productBody struct {
	Division    navItem
	Name        string
	Description string
	Carousel    *carouselView
	Contact     contactView
}

type aboutBody struct {
	Body     string
	Carousel *carouselView
}

type contactBody struct {
	Company string
	Contact contactView
}

type errorBody struct {
	Status  int
	Message string
}

func langPath(lang i18n.Lang, parts ...string) string {
	return "/" + string(lang) + "/" + strings.Join(parts, "/")
}

func (s *Server) page(r *http.Request, lang i18n.Lang, title, activeDivision string, body any) pageData {
	site := s.store.Site()
	pd := pageData{
		Lang:      lang,
		Title:     title,
		SwitchURL: switchURL(r, lang),
		Year:      s.now().Year(),
		Body:      body,
	}
	if site != nil {
		pd.Company = site.Company.Name
		pd.Divisions = make([]navItem, 0, len(site.Divisions))
		for _, d := range site.Divisions {
			pd.Divisions = append(pd.Divisions, navItem{
				Name:   d.Name.In(lang),
				URL:    langPath(lang, "divisions", d.Slug),
				Active: d.Slug == activeDivision,
			})
		}
	}
	return pd
}

// switchURL 把当前路径的语言段换成另一种语言；路径不带语言段时回到对方首页。
func switchURL(r *http.Request, lang i18n.Lang) string {
	other := lang.Other()
	p := r.URL.Path
	prefix := "/" + string(lang)
	if p == prefix || strings.HasPrefix(p, prefix+"/") {
		u := "/" + string(other) + strings.TrimPrefix(p, prefix)
		if r.URL.RawQuery != "" {
			u += "?" + r.URL.RawQuery
		}
		return u
	}
	return "/" + string(other) + "/"
}

func contactLinks(c content.Company, lang i18n.Lang, about string) contactView {
	msg := i18n.T(lang, "contact.message", about)
	subject := i18n.T(lang, "contact.subject", about)
	return contactView{
		Lang:     lang,
		WhatsApp: contact.WhatsApp(c.WhatsApp, msg),
		Mailto:   contact.Mailto(c.Email, subject, msg),
		Gmail:    contact.GmailCompose(c.Email, subject, msg),
		Outlook:  contact.OutlookCompose(c.Email, subject, msg),
		Phone:    c.Phone,
		Email:    c.Email,
		Address:  c.Address.In(lang),
	}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request, lang i18n.Lang) {
	site := s.store.Site()
	body := homeBody{
		Hero:    s.heroSlot("home-hero", site.Company.Hero, lang, site.Company.Name),
		Tagline: site.Company.Tagline.In(lang),
	}
	slots := []*slotView{body.Hero}
	for _, d := range site.Divisions {
		name := d.Name.In(lang)
		card := cardView{
			Slug:    d.Slug,
			Name:    name,
			Summary: d.Summary.In(lang),
			URL:     langPath(lang, "divisions", d.Slug),
			Slot:    s.cardSlot("division-"+d.Slug, d.Images, d.Count, lang, name),
		}
		body.Cards = append(body.Cards, card)
		slots = append(slots, card.Slot)
	}
	s.probeAll(r.Context(), slots...)
	s.render(w, r, "home", s.page(r, lang, i18n.T(lang, "nav.home"), "", body), http.StatusOK)
}

func (s *Server) handleDivision(w http.ResponseWriter, r *http.Request, lang i18n.Lang) {
	site := s.store.Site()
	d, ok := site.Division(r.PathValue("division"))
	if !ok {
		s.renderError(w, r, lang, http.StatusNotFound)
		return
	}
	name := d.Name.In(lang)
	body := divisionBody{
		Hero:    s.heroSlot("division-hero", d.Images, lang, name),
		Name:    name,
		Summary: d.Summary.In(lang),
	}
	slots := []*slotView{body.Hero}
	for _, p := range d.Products {
		pname := p.Name.In(lang)
		card := cardView{
			Slug:    p.Slug,
			Name:    pname,
			Summary: p.Description.In(lang),
			URL:     langPath(lang, "divisions", d.Slug, p.Slug),
			Slot:    s.cardSlot("product-"+p.Slug, p.Images, p.Count, lang, pname),
		}
		body.Cards = append(body.Cards, card)
		slots = append(slots, card.Slot)
	}
	s.probeAll(r.Context(), slots...)
	s.render(w, r, "division", s.page(r, lang, name, d.Slug, body), http.StatusOK)
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request, lang i18n.Lang) {
	site := s.store.Site()
	d, ok := site.Division(r.PathValue("division"))
	if !ok {
		s.renderError(w, r, lang, http.StatusNotFound)
		return
	}
	p, ok := d.Product(r.PathValue("product"))
	if !ok {
		s.renderError(w, r, lang, http.StatusNotFound)
		return
	}

	name := p.Name.In(lang)
	base := langPath(lang, "divisions", d.Slug, p.Slug)
	locs := resolve.ForPolicy(domain.PolicyDetail, p.Images, s.galleryCount(p.Count))
	cv, redirect := s.buildCarousel("product-"+p.Slug, base, locs, parseCarouselQuery(r.URL.Query()), lang, name)
	if redirect != "" {
		http.Redirect(w, r, redirect, http.StatusSeeOther)
		return
	}
	if cv != nil {
		s.probeAll(r.Context(), cv.Slot)
	}

	body := productBody{
		Division:    navItem{Name: d.Name.In(lang), URL: langPath(lang, "divisions", d.Slug)},
		Name:        name,
		Description: p.Description.In(lang),
		Carousel:    cv,
		Contact:     contactLinks(site.Company, lang, name),
	}
	s.render(w, r, "product", s.page(r, lang, name, d.Slug, body), http.StatusOK)
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request, lang i18n.Lang) {
	site := s.store.Site()
	base := langPath(lang, "about")
	locs := resolve.ForPolicy(domain.PolicyDetail, site.About.Images, s.galleryCount(site.About.Count))
	cv, redirect := s.buildCarousel("about", base, locs, parseCarouselQuery(r.URL.Query()), lang, site.Company.Name)
	if redirect != "" {
		http.Redirect(w, r, redirect, http.StatusSeeOther)
		return
	}
	if cv != nil {
		s.probeAll(r.Context(), cv.Slot)
	}
	body := aboutBody{Body: site.About.Body.In(lang), Carousel: cv}
	s.render(w, r, "about", s.page(r, lang, i18n.T(lang, "about.title"), "", body), http.StatusOK)
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request, lang i18n.Lang) {
	site := s.store.Site()
	body := contactBody{
		Company: site.Company.Name,
		Contact: contactLinks(site.Company, lang, i18n.T(lang, "contact.general")),
	}
	s.render(w, r, "contact", s.page(r, lang, i18n.T(lang, "contact.title"), "", body), http.StatusOK)
}
