package mockapi

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/penababayev/zakaz-zenan-zahmeti/internal/sellerapi"
	"github.com/penababayev/zakaz-zenan-zahmeti/internal/shared/slug"
)

var (
	errNotFound      = errors.New("product not found")
	errImageNotFound = errors.New("image not found")
	errUserExists    = errors.New("username or email already exists")
	errShopExists    = errors.New("shop name already exists")
	errBadLogin      = errors.New("invalid credentials")
)

type seller struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash []byte
	ShopName     string
	Location     string
	PhoneNumber  string
	Bio          string
}

type image struct {
	sellerapi.ProductImage
	key string
}

type product struct {
	sellerapi.Product
	sellerID int64
	images   []image
}

func (p *product) view() sellerapi.Product {
	out := p.Product
	out.Images = make([]string, 0, len(p.images))
	for _, im := range p.images {
		out.Images = append(out.Images, im.URL)
	}
	return out
}

// Store is the fake backend's state. Nothing is persisted.
type Store struct {
	mu         sync.Mutex
	bcryptCost int

	sellers  []*seller
	products map[int64]*product

	nextSeller  int64
	nextProduct int64
	nextImage   int64
}

func NewStore(bcryptCost int) *Store {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Store{
		bcryptCost:  bcryptCost,
		products:    map[int64]*product{},
		nextSeller:  1,
		nextProduct: 1,
		nextImage:   1,
	}
}

func (s *Store) AddSeller(in sellerapi.SignupPayload) (*seller, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.sellers {
		if strings.EqualFold(u.Username, in.Username) || strings.EqualFold(u.Email, in.Email) {
			return nil, errUserExists
		}
	}
	for _, u := range s.sellers {
		if u.ShopName == in.ShopName {
			return nil, errShopExists
		}
	}
	u := &seller{
		ID:           s.nextSeller,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		ShopName:     in.ShopName,
		Location:     in.Location,
		PhoneNumber:  in.PhoneNumber,
		Bio:          in.Bio,
	}
	s.nextSeller++
	s.sellers = append(s.sellers, u)
	return u, nil
}

// Authenticate matches on username first, then email.
func (s *Store) Authenticate(usernameOrEmail, password string) (*seller, error) {
	s.mu.Lock()
	var found *seller
	for _, u := range s.sellers {
		if u.Username == usernameOrEmail {
			found = u
			break
		}
	}
	if found == nil {
		for _, u := range s.sellers {
			if u.Email == usernameOrEmail {
				found = u
				break
			}
		}
	}
	s.mu.Unlock()

	if found == nil {
		return nil, errBadLogin
	}
	if bcrypt.CompareHashAndPassword(found.PasswordHash, []byte(password)) != nil {
		return nil, errBadLogin
	}
	return found, nil
}

func (s *Store) seller(id int64) *seller {
	for _, u := range s.sellers {
		if u.ID == id {
			return u
		}
	}
	return nil
}

type listParams struct {
	Statuses []string
	Q        string
	Limit    int
	Offset   int
}

// List returns the seller's products, newest first.
func (s *Store) List(sellerID int64, p listParams) []sellerapi.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := strings.ToLower(p.Q)
	var rows []*product
	for _, pr := range s.products {
		if pr.sellerID != sellerID {
			continue
		}
		if len(p.Statuses) > 0 && !contains(p.Statuses, string(pr.Status)) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(pr.Title), q) {
			continue
		}
		rows = append(rows, pr)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID > rows[j].ID })

	out := []sellerapi.Product{}
	for i := p.Offset; i < len(rows) && len(out) < p.Limit; i++ {
		out = append(out, rows[i].view())
	}
	return out
}

func (s *Store) Create(sellerID int64, in sellerapi.CreateProductPayload) sellerapi.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	handmade := in.IsHandmade
	pr := &product{
		Product: sellerapi.Product{
			ID:            s.nextProduct,
			Title:         in.Title,
			Slug:          slug.FromName(in.Title),
			Price:         in.Price.Decimal,
			Currency:      in.Currency,
			StockQuantity: in.StockQuantity,
			Description:   in.Description,
			CategoryID:    in.CategoryID,
			Status:        in.Status,
			IsHandmade:    &handmade,
		},
		sellerID: sellerID,
	}
	s.nextProduct++
	s.decorate(pr)
	s.products[pr.ID] = pr
	return pr.view()
}

// Patch applies title, price and status. Other keys were dropped by the
// handler.
func (s *Store) Patch(sellerID, id int64, title *string, price *decimal.Decimal, status *sellerapi.Status) (sellerapi.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pr, ok := s.owned(sellerID, id)
	if !ok {
		return sellerapi.Product{}, errNotFound
	}
	if title != nil {
		pr.Title = *title
	}
	if price != nil {
		pr.Price = *price
	}
	if status != nil {
		pr.Status = *status
	}
	return pr.view(), nil
}

func (s *Store) Replace(sellerID, id int64, in sellerapi.ReplaceProductPayload) (sellerapi.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pr, ok := s.owned(sellerID, id)
	if !ok {
		return sellerapi.Product{}, errNotFound
	}
	handmade := in.IsHandmade
	pr.Title = in.Title
	pr.Slug = slug.FromName(in.Title)
	pr.Price = in.Price.Decimal
	pr.Currency = in.Currency
	pr.Description = in.Description
	pr.CategoryID = in.CategoryID
	pr.Status = in.Status
	pr.IsHandmade = &handmade
	s.decorate(pr)
	return pr.view(), nil
}

func (s *Store) SetStock(sellerID, id int64, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pr, ok := s.owned(sellerID, id)
	if !ok {
		return errNotFound
	}
	pr.StockQuantity = qty
	return nil
}

func (s *Store) Images(sellerID, id int64) ([]sellerapi.ProductImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pr, ok := s.owned(sellerID, id)
	if !ok {
		return nil, errNotFound
	}
	out := make([]sellerapi.ProductImage, 0, len(pr.images))
	for _, im := range pr.images {
		out = append(out, im.ProductImage)
	}
	return out, nil
}

func (s *Store) Owns(sellerID, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.owned(sellerID, id)
	return ok
}

func (s *Store) AddImage(sellerID, id int64, url, key string) (sellerapi.ProductImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pr, ok := s.owned(sellerID, id)
	if !ok {
		return sellerapi.ProductImage{}, errNotFound
	}
	im := image{ProductImage: sellerapi.ProductImage{ID: s.nextImage, ProductID: id, URL: url}, key: key}
	s.nextImage++
	pr.images = append(pr.images, im)
	return im.ProductImage, nil
}

// RemoveImage drops the image and returns its storage key ("" for
// fixtures that were never uploaded).
func (s *Store) RemoveImage(sellerID, id, imageID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pr, ok := s.owned(sellerID, id)
	if !ok {
		return "", errNotFound
	}
	for i, im := range pr.images {
		if im.ID == imageID {
			pr.images = append(pr.images[:i:i], pr.images[i+1:]...)
			return im.key, nil
		}
	}
	return "", errImageNotFound
}

func (s *Store) owned(sellerID, id int64) (*product, bool) {
	pr, ok := s.products[id]
	if !ok || pr.sellerID != sellerID {
		return nil, false
	}
	return pr, true
}

// decorate fills the denormalized fields the real API joins in.
func (s *Store) decorate(pr *product) {
	pr.CategoryName = categoryName(pr.CategoryID)
	if u := s.seller(pr.sellerID); u != nil {
		pr.ShopName = u.ShopName
		pr.Location = u.Location
		pr.PhoneNumber = u.PhoneNumber
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
