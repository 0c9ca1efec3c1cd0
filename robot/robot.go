package robot

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"github.com/kinodynamics/kinodyn/spatialmath"
)

// Robot owns all Link and Joint instances of one machine. The name lookup
// maps are built once at construction and never mutated afterward. A Robot
// whose construction succeeded is safe for concurrent read-only use.
type Robot struct {
	name   string
	links  []*Link
	joints []*Joint

	linkByName  map[string]*Link
	jointByName map[string]*Joint
}

// New assembles a Robot from description records. Construction is
// complete-or-fail: no partially linked topology is ever returned. Ids are
// assigned in declared order. A joint referencing an unknown link name, a
// duplicate name, or a disconnected link graph is fatal.
func New(cfg Config) (*Robot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Robot{
		name:        cfg.Name,
		links:       make([]*Link, 0, len(cfg.Links)),
		joints:      make([]*Joint, 0, len(cfg.Joints)),
		linkByName:  make(map[string]*Link, len(cfg.Links)),
		jointByName: make(map[string]*Joint, len(cfg.Joints)),
	}

	for i, lc := range cfg.Links {
		restPose := orIdentity(lc.Pose)
		comOffset := orIdentity(lc.ComOffset)
		comPose := restPose.Compose(comOffset)
		l := &Link{
			name:     lc.Name,
			id:       i,
			mass:     lc.Mass,
			inertia:  lc.Inertia,
			restPose: restPose,
			comPose:  comPose,
		}
		if lc.Fixed {
			fp := comPose
			if lc.FixedPose != nil {
				fp = orIdentity(*lc.FixedPose)
			}
			l.Fix(fp)
		}
		r.links = append(r.links, l)
		r.linkByName[l.name] = l
	}

	for i, jc := range cfg.Joints {
		parent := r.linkByName[jc.Parent]
		child := r.linkByName[jc.Child]
		j := &Joint{
			name:     jc.Name,
			id:       i,
			kind:     jc.Kind,
			effort:   jc.Effort,
			parent:   parent.name,
			child:    child.name,
			parentID: parent.id,
			childID:  child.id,
			axis:     jc.Axis,
			limits:   jc.Limits,
			restLink: parent.restPose.Invert().Compose(child.restPose),
			restCom:  parent.comPose.Invert().Compose(child.comPose),
		}
		j.screw = deriveScrewAxis(jc, child)
		r.joints = append(r.joints, j)
		r.jointByName[j.name] = j

		child.parentJoints = append(child.parentJoints, j.id)
		parent.childJoints = append(parent.childJoints, j.id)
	}

	if err := r.checkConnected(); err != nil {
		return nil, err
	}
	return r, nil
}

// deriveScrewAxis expresses a joint's motion as a screw axis in the child
// link's CoM frame. The joint axis passes through the child link frame
// origin; only the frame of expression changes.
func deriveScrewAxis(jc JointConfig, child *Link) spatialmath.Vector6 {
	if jc.Kind == Fixed {
		return spatialmath.Vector6{}
	}
	// child link frame as seen from the child CoM frame
	linkInCom := child.comPose.Invert().Compose(child.restPose)
	axis := linkInCom.RotatePoint(jc.Axis.Normalize())
	if jc.Kind == Prismatic {
		return spatialmath.NewVector6(r3.Vector{}, axis)
	}
	origin := linkInCom.T // child link frame origin in CoM coordinates
	return spatialmath.NewVector6(axis, origin.Cross(axis))
}

// checkConnected walks the undirected link graph from the first declared
// link with a visited set, so closed loops terminate. Any unreachable link
// is a fatal configuration error (multi-root forests are unsupported).
func (r *Robot) checkConnected() error {
	if len(r.links) == 0 {
		return nil
	}
	visited := make(map[int]bool, len(r.links))
	queue := []int{r.links[0].id}
	visited[r.links[0].id] = true
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, jid := range r.links[id].JointIDs() {
			j := r.joints[jid]
			for _, next := range []int{j.parentID, j.childID} {
				if !visited[next] {
					visited[next] = true
					queue = append(queue, next)
				}
			}
		}
	}
	for _, l := range r.links {
		if !visited[l.id] {
			return NewDisconnectedTopologyError(l.name)
		}
	}
	return nil
}

// Name returns the robot name.
func (r *Robot) Name() string { return r.name }

// Links returns the links in declared order.
func (r *Robot) Links() []*Link { return r.links }

// Joints returns the joints in declared order.
func (r *Robot) Joints() []*Joint { return r.joints }

// NumLinks returns the number of links.
func (r *Robot) NumLinks() int { return len(r.links) }

// NumJoints returns the number of joints.
func (r *Robot) NumJoints() int { return len(r.joints) }

// Link looks a link up by name.
func (r *Robot) Link(name string) (*Link, error) {
	l, ok := r.linkByName[name]
	if !ok {
		return nil, NewUnknownLinkError(name)
	}
	return l, nil
}

// Joint looks a joint up by name.
func (r *Robot) Joint(name string) (*Joint, error) {
	j, ok := r.jointByName[name]
	if !ok {
		return nil, NewUnknownJointError(name)
	}
	return j, nil
}

// JointByID returns the joint with the given id.
func (r *Robot) JointByID(id int) *Joint { return r.joints[id] }

// LinkByID returns the link with the given id.
func (r *Robot) LinkByID(id int) *Link { return r.links[id] }

// ParentJoints returns the joints across which the named link is the child.
func (r *Robot) ParentJoints(link string) ([]*Joint, error) {
	l, err := r.Link(link)
	if err != nil {
		return nil, err
	}
	out := make([]*Joint, 0, len(l.parentJoints))
	for _, id := range l.parentJoints {
		out = append(out, r.joints[id])
	}
	return out, nil
}

// ChildJoints returns the joints across which the named link is the parent.
func (r *Robot) ChildJoints(link string) ([]*Joint, error) {
	l, err := r.Link(link)
	if err != nil {
		return nil, err
	}
	out := make([]*Joint, 0, len(l.childJoints))
	for _, id := range l.childJoints {
		out = append(out, r.joints[id])
	}
	return out, nil
}

// ParentLinks returns the links on the parent side of the named link's
// parent joints.
func (r *Robot) ParentLinks(link string) ([]*Link, error) {
	joints, err := r.ParentJoints(link)
	if err != nil {
		return nil, err
	}
	out := make([]*Link, 0, len(joints))
	for _, j := range joints {
		out = append(out, r.links[j.parentID])
	}
	return out, nil
}

// ChildLinks returns the links on the child side of the named link's child
// joints.
func (r *Robot) ChildLinks(link string) ([]*Link, error) {
	joints, err := r.ChildJoints(link)
	if err != nil {
		return nil, err
	}
	out := make([]*Link, 0, len(joints))
	for _, j := range joints {
		out = append(out, r.links[j.childID])
	}
	return out, nil
}

// JointBetween returns the joint connecting the two named links, in either
// orientation.
func (r *Robot) JointBetween(l1, l2 string) (*Joint, error) {
	if _, err := r.Link(l1); err != nil {
		return nil, err
	}
	if _, err := r.Link(l2); err != nil {
		return nil, err
	}
	for _, j := range r.joints {
		if (j.parent == l1 && j.child == l2) || (j.parent == l2 && j.child == l1) {
			return j, nil
		}
	}
	return nil, NewNoJointBetweenError(l1, l2)
}

// Variant returns an independent copy of the robot with the given links
// pinned to the given world poses and all other fixed flags preserved.
// Phase-specific robot models for contact scheduling are built this way.
func (r *Robot) Variant(fixed map[string]spatialmath.Pose) (*Robot, error) {
	out := &Robot{
		name:        r.name,
		links:       make([]*Link, 0, len(r.links)),
		joints:      make([]*Joint, 0, len(r.joints)),
		linkByName:  make(map[string]*Link, len(r.links)),
		jointByName: make(map[string]*Joint, len(r.joints)),
	}
	for _, l := range r.links {
		c := l.clone()
		out.links = append(out.links, c)
		out.linkByName[c.name] = c
	}
	for _, j := range r.joints {
		c := j.clone()
		out.joints = append(out.joints, c)
		out.jointByName[c.name] = c
	}
	for name, pose := range fixed {
		l, err := out.Link(name)
		if err != nil {
			return nil, err
		}
		l.Fix(pose)
	}
	return out, nil
}

func orIdentity(p spatialmath.Pose) spatialmath.Pose {
	if p.R == (quat.Number{}) {
		return spatialmath.NewPose(p.T, quat.Number{Real: 1})
	}
	return p
}
