package resolve

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/John-Robertt/vitrina/internal/domain"
)

const defaultCacheSize = 512

// Cache 记忆化 Location -> CandidateList。
//
// Resolve 是纯函数，缓存只省 CPU，不改变语义；探测结果本身从不缓存。
// 返回值总是副本，调用方修改不会污染缓存。
type Cache struct {
	r   Resolver
	lru *lru.Cache[domain.Location, domain.CandidateList]
}

func NewCache(r Resolver, size int) (*Cache, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	c, err := lru.New[domain.Location, domain.CandidateList](size)
	if err != nil {
		return nil, err
	}
	return &Cache{r: r, lru: c}, nil
}

func (c *Cache) Resolve(loc domain.Location) domain.CandidateList {
	if list, ok := c.lru.Get(loc); ok {
		return clone(list)
	}
	list := c.r.Resolve(loc)
	c.lru.Add(loc, list)
	return clone(list)
}

func (c *Cache) Len() int { return c.lru.Len() }

func clone(in domain.CandidateList) domain.CandidateList {
	return append(domain.CandidateList{}, in...)
}
