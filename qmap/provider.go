package qmap

import "goquakemap/provider"

// Provider adapts QMap to the shared provider.Provider surface.
type Provider struct {
	*QMap
}

func NewProvider(cfg Config) *Provider {
	return &Provider{QMap: New(cfg)}
}

func (p *Provider) Load(path string) error {
	return p.LoadFile(path)
}

func (p *Provider) SetTextureBoundsSource(src provider.TextureBoundsSource) {
	p.RegisterTextureBoundsSource(src)
}

func (p *Provider) SolidEntities() []provider.SolidEntityInfo {
	solids := p.QMap.SolidEntities()
	out := make([]provider.SolidEntityInfo, len(solids))
	for i, se := range solids {
		out[i] = provider.SolidEntityInfo{Attributes: se.EntityAttributes, IsWorldspawn: se.IsWorldspawn}
	}
	return out
}

func (p *Provider) PointEntities() []provider.PointEntityInfo {
	points := p.QMap.PointEntities()
	out := make([]provider.PointEntityInfo, len(points))
	for i, pe := range points {
		out[i] = provider.PointEntityInfo{Attributes: pe.EntityAttributes, Origin: pe.Origin, Angle: pe.Angle}
	}
	return out
}

func (p *Provider) Worldspawn() (provider.SolidEntityInfo, bool) {
	ws, ok := p.QMap.Worldspawn()
	if !ok {
		return provider.SolidEntityInfo{}, false
	}
	return provider.SolidEntityInfo{Attributes: ws.EntityAttributes, IsWorldspawn: true}, true
}

func (p *Provider) EntityMeshes(entityIndex int) ([]provider.RenderMesh, error) {
	return p.QMap.EntityMeshes(entityIndex)
}

func (p *Provider) TextureData(name string) (provider.TextureData, bool) {
	// MAP files reference textures only by name; the pixel data lives in
	// a WAD archive resolved externally (see RequiredWads), not in the
	// map source itself.
	return provider.TextureData{}, false
}
